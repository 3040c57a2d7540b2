package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/mathsol/academy/core/curriculum"
)

// readUnits loads the `units` list of a yaml, json or toml file.
func readUnits(file string) ([]curriculum.NewUnit, error) {
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	var units []curriculum.NewUnit
	if err := v.UnmarshalKey("units", &units); err != nil {
		return nil, errors.Wrapf(err, "decoding units of %s", file)
	}
	return units, nil
}

func (cli *commandLine) seedCurriculum(file string) error {
	units, err := readUnits(file)
	if err != nil {
		return err
	}
	cat, err := cli.curriculum.Seed(context.Background(), units)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "seeded %d curriculum units\n", len(cat))
	return nil
}

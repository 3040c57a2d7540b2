package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/dashboard"
	exportsvc "github.com/mathsol/academy/services/export"
)

func (cli *commandLine) riskDigest(date string, send bool) error {
	loc := cli.conf.Timezone
	asOf := time.Now().In(loc)
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return errors.Errorf("date must be of form YYYY-MM-DD (got '%s')", date)
		}
		asOf = day
	}

	ctx := context.Background()
	d, err := cli.aggregator.Compute(ctx, dashboard.Scope{}, asOf)
	if err != nil {
		return err
	}
	cli.printDashboard(d)

	if !send || len(cli.conf.DigestRecipients) == 0 {
		return nil
	}
	xlsx, filename, err := cli.exporter.RiskStudents(d)
	if err != nil {
		return errors.Wrap(err, "exporting risk students")
	}
	msg := &core.EmailMessage{
		To:           cli.conf.DigestRecipients,
		Subject:      fmt.Sprintf("%s 관리 필요 학생 %d명", d.Date, len(d.RiskStudents)),
		TemplateName: "risk_digest",
		TemplateData: d,
	}
	msg.AddAttachment(filename, exportsvc.ContentType, xlsx.Bytes())
	if err := cli.mailSvc.SendMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "sending risk digest")
	}
	_, _ = fmt.Fprintf(cli.out, "digest sent to %d recipient(s)\n", len(cli.conf.DigestRecipients))
	return nil
}

// printDashboard writes an aligned table on a terminal and tab-separated lines otherwise.
func (cli *commandLine) printDashboard(d dashboard.Dashboard) {
	_, _ = fmt.Fprintf(cli.out, "date: %s\ttoday_classes: %d\ttotal_students: %d\ttoday_evals: %d\n",
		d.Date, d.TodayClasses, d.TotalStudents, d.TodayEvals)

	if !isTerminalFunc() {
		for _, r := range d.RiskStudents {
			_, _ = fmt.Fprintf(cli.out, "%d\t%s\t%s\t%.1f\n", r.StudentID, r.Name, r.Grade, r.RollingAverage)
		}
		return
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', tabwriter.AlignRight|tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tGRADE\tAVG\t")
	for _, r := range d.RiskStudents {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t\n", r.StudentID, r.Name, r.Grade, r.RollingAverage)
	}
	_ = w.Flush()
}

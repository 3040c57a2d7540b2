package recommend

import (
	"fmt"

	"github.com/mathsol/academy/core/evaluation"
)

func reasonEmptyCatalog() string {
	return "등록된 커리큘럼 단원이 없습니다."
}

func reasonNewStudent(n int) string {
	return fmt.Sprintf("첫 수업입니다. 커리큘럼의 처음 %d개 단원부터 시작하세요.", n)
}

func reasonExhausted(score int) string {
	return fmt.Sprintf("최근 점수 %d점. 커리큘럼의 모든 단원을 모두 마쳤습니다.", score)
}

func reasonProgress(score, streak int) string {
	return fmt.Sprintf("최근 점수 %d점, 연속 우수 %d회. 다음 진도로 나아가세요.", score, streak)
}

func reasonReinforce(last evaluation.Log, struggle int) string {
	switch {
	case last.Score < struggle && last.Homework == evaluation.HomeworkIncomplete:
		return fmt.Sprintf("최근 점수 %d점, 숙제 미완료. 지난 단원을 복습하세요.", last.Score)
	case last.Score < struggle:
		return fmt.Sprintf("최근 점수 %d점으로 기준(%d점) 미만. 지난 단원을 복습하세요.", last.Score, struggle)
	default:
		return fmt.Sprintf("최근 점수 %d점, 숙제 미완료. 지난 단원을 복습하세요.", last.Score)
	}
}

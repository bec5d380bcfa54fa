package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/edusmart/internal/models"
)

const noScoreHistory = "Chưa có dữ liệu điểm số."

// studentAnalysisPrompt builds the analysis request from the student's history, oldest first.
func studentAnalysisPrompt(student models.Student, scores []models.ScoreEntry, subjects []models.Subject) string {
	names := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		names[sub.ID] = sub.Name
	}
	history := make([]models.ScoreEntry, 0, len(scores))
	for _, s := range scores {
		if s.StudentID == student.ID {
			history = append(history, s)
		}
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date < history[j].Date })

	lines := make([]string, 0, len(history))
	for _, s := range history {
		name, ok := names[s.SubjectID]
		if !ok {
			name = s.SubjectID
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s, ngày %s)", name, strconv.FormatFloat(s.Score, 'f', -1, 64), s.Type, s.Date))
	}
	historyText := strings.Join(lines, "\n")
	if historyText == "" {
		historyText = noScoreHistory
	}

	return fmt.Sprintf(`Bạn là một chuyên gia tư vấn giáo dục cao cấp. Hãy phân tích dữ liệu học tập sau đây của học sinh:

Học sinh: %s
Lớp: %s

Lịch sử điểm số:
%s

Yêu cầu:
1. Phân tích xu hướng học tập (tiến bộ hay sa sút).
2. Xác định các môn học thế mạnh và môn học cần cải thiện.
3. Dự báo kết quả học tập trong tương lai gần.
4. Đề xuất lộ trình can thiệp sư phạm cá nhân hóa (các bước cụ thể để cải thiện).
5. Lời khuyên cho phụ huynh và giáo viên.

Hãy trả lời bằng tiếng Việt, định dạng Markdown chuyên nghiệp, rõ ràng.`, student.Name, student.Grade, historyText)
}

func studyPlanPrompt(topic string) string {
	return fmt.Sprintf(`Hãy lập một lộ trình học tập chi tiết cho chủ đề: "%s". Lộ trình nên bao gồm các giai đoạn từ cơ bản đến nâng cao, các tài liệu tham khảo gợi ý và phương pháp tự học hiệu quả. Trả lời bằng tiếng Việt, định dạng Markdown.`, topic)
}

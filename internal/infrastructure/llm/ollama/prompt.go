package ollama

import (
	"fmt"
	"strings"

	"github.com/chemi-labs/chemtutor/internal/core/domain"
)

func buildAnswerPrompt(question string, retrieval domain.RetrievalContext) string {
	var b strings.Builder
	b.WriteString("Bạn là trợ lý gia sư Hóa học cho học sinh phổ thông. ")
	b.WriteString("Trả lời ngắn gọn, thân thiện, bằng tiếng Việt.\n\n")

	if retrieval.Found && retrieval.Primary != nil {
		p := retrieval.Primary
		b.WriteString("Thông tin tra cứu được:\n")
		fmt.Fprintf(&b, "- Tên: %s\n- Công thức: %s\n- Loại: %s\n", p.Name, p.Formula, p.Type)
		if len(retrieval.Related) > 0 {
			b.WriteString("Các chất liên quan:\n")
			for _, r := range retrieval.Related {
				fmt.Fprintf(&b, "- %s (%s)\n", r.Name, r.Formula)
			}
		}
		b.WriteString("\nChỉ dùng thông tin trên cho các dữ kiện về chất; ")
		b.WriteString("kiến thức hóa học chung có thể bổ sung từ hiểu biết của bạn.\n")
	} else {
		b.WriteString("Không tìm thấy chất nào trong cơ sở dữ liệu. ")
		b.WriteString("Hãy nói với học sinh rằng bạn không tìm thấy thông tin và gợi ý hỏi lại theo tên hoặc công thức hóa học.\n")
	}

	fmt.Fprintf(&b, "\nCâu hỏi của học sinh: %s\n", question)
	return b.String()
}

func buildExtractionPrompt(question string) string {
	return fmt.Sprintf(`Extract the chemical entity a student is asking about.
Return strict JSON: {"search_query": "<element or compound name or formula, empty if none>", "is_chemistry_question": <true|false>}.
The question may be in Vietnamese or English and may contain typos; keep the entity as written, do not translate it.

Question: %s`, question)
}

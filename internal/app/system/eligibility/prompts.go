package eligibility

import (
	"fmt"
	"strings"

	"github.com/jansethu/mysarkar/internal/app/system/normalize"
)

func quizPrompt(criteria, schemeName string) string {
	return fmt.Sprintf(`
You are creating an eligibility quiz for a government scheme. Based on the EXACT eligibility criteria provided, generate 5 specific yes/no questions that directly test these requirements.

Scheme Name: %s

EXACT Eligibility Criteria:
%s

IMPORTANT INSTRUCTIONS:
1. Read the eligibility criteria CAREFULLY
2. Create questions that directly test the specific requirements mentioned
3. Use exact age ranges, income limits, categories, and conditions from the criteria
4. Make questions specific, not generic
5. Include specific numbers, amounts, or categories mentioned in the criteria

Return ONLY a JSON object:
{
  "questions": []
}

Example of GOOD specific questions:
- "Are you between 18-35 years old?" (if criteria mentions this age range)
- "Is your annual family income below ₹2 lakh?" (if criteria mentions this amount)
- "Do you belong to Scheduled Caste/Scheduled Tribe category?" (if criteria mentions SC/ST)

Example of BAD generic questions:
- "Do you meet the age criteria?"
- "Do you meet the income criteria?"
`, schemeName, criteria)
}

func evalPrompt(criteria string, questions []string, answers []bool) string {
	return fmt.Sprintf(`
You are evaluating eligibility for a government scheme based on quiz answers and the EXACT eligibility criteria.

EXACT Eligibility Criteria:
%s

Quiz Results:
%s

INSTRUCTIONS:
1. Compare each answer against the SPECIFIC requirements in the eligibility criteria
2. Be STRICT - if any critical requirement is not met, mark as NOT eligible
3. Consider ALL requirements, not just some
4. Provide specific reason mentioning which requirement was not met

Return ONLY a JSON object:
{
  "eligible": true/false,
  "reason": "Specific explanation mentioning which exact requirement was/wasn't met",
  "score": 85
}

Be very specific in the reason. Mention exact requirements from the criteria.
`, criteria, QAText(questions, answers))
}

// QAText renders "Q: …\nA: Yes|No" blocks separated by a blank line.
// Questions without an answer count as "No".
func QAText(questions []string, answers []bool) string {
	blocks := make([]string, len(questions))
	for i, q := range questions {
		blocks[i] = fmt.Sprintf("Q: %s\nA: %s", q, normalize.Answer(answerAt(answers, i)))
	}
	return strings.Join(blocks, "\n\n")
}

func answerAt(answers []bool, i int) bool {
	return i < len(answers) && answers[i]
}

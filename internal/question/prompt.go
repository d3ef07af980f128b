package question

import (
	"fmt"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

// BuildPrompt returns the generation prompt for one question of the
// given type, grounded in a single document clause.
func BuildPrompt(t model.QuestionType, item model.SpecItem) string {
	switch t {
	case model.TypeSingleChoice:
		return fmt.Sprintf(singleChoicePrompt, item.Title, item.Text)
	case model.TypeJudge:
		return fmt.Sprintf(judgePrompt, item.Title, item.Text)
	case model.TypeSubjective:
		return fmt.Sprintf(subjectivePrompt, item.Title, item.Text)
	}
	return ""
}

const singleChoicePrompt = `基于以下技术规范内容，生成一道单选题：

标题: %s
内容: %s

请生成一道单选题，要求：
1. 题目应该考查对该技术规范的理解
2. 提供3个选项，其中1个正确答案，2个错误答案
3. 错误答案应该是合理的干扰项
4. 返回JSON格式，包含question、options、answer字段

返回格式示例：
{
    "question": "问题内容",
    "options": ["A. 选项1", "B. 选项2", "C. 选项3"],
    "answer": "A"
}
`

const judgePrompt = `基于以下技术规范内容，生成一道判断题：

标题: %s
内容: %s

请生成一道判断题，要求：
1. 题目应该考查对该技术规范的理解
2. 可以是正确的陈述或错误的陈述
3. 返回JSON格式，包含question、answer字段

返回格式示例：
{
    "question": "问题内容",
    "answer": "正确"
}
`

const subjectivePrompt = `基于以下技术规范内容，生成一道主观题（问答题）：

标题: %s
内容: %s

请生成一道主观题，要求：
1. 题目应该考查对该技术规范内容的理解和阐述能力
2. 提供一个简洁明了的标准答案
3. 返回JSON格式，包含question、answer字段

返回格式示例：
{
    "question": "请阐述在进行'停电抄表及显示'时，电能表应具备哪些特性或操作流程？",
    "answer": "电能表在停电情况下，可通过按键唤醒显示，显示内容应包含重要结算数据，并且所有数据应能在断电情况下至少保存10年。"
}
`

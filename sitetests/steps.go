package sitetests

import (
	"github.com/Criss1210/tarea-4/browser"
)

// Capture names saved by the steps when they complete.
const (
	CaptureHome          = "inicio_stack"
	CaptureFirstQuestion = "primera_pregunta"
	CaptureTagSearch     = "busqueda_tags"
	CaptureAskPage       = "login_pregunta"
	CaptureCompanySearch = "search_companies"
)

const (
	QuestionLinkSelector  = ".s-post-summary .s-link"
	TagFilterSelector     = `input[placeholder="Filter by tag name"]`
	CompanySearchSelector = `input[placeholder="Search all companies"]`

	TagSearchText     = "Javascript"
	CompanySearchText = "Contentful"
)

func DoHomePageStep(t *T) {
	t.Navigate("")
	t.WaitForLoad()
}

func DoFirstQuestionStep(t *T) {
	t.Navigate("/questions")
	question := t.Find(QuestionLinkSelector)
	t.Debug("first question: %q", t.Text(question))

	from := t.context.Session().URL()
	t.Click(question)
	t.WaitForURLChange(from)
	t.WaitForLoad()
}

func DoTagSearchStep(t *T) {
	t.Navigate("/tags")
	t.SendKeys(t.Find(TagFilterSelector), TagSearchText)
	// results are filtered by a background request
	t.WaitForLoad()
}

func DoAskPageStep(t *T) {
	t.Navigate("/questions/ask")
}

func DoCompanySearchStep(t *T) {
	t.Navigate("/jobs/companies")
	input := t.Find(CompanySearchSelector)
	t.SendKeys(input, CompanySearchText)
	t.Press(input, browser.KeyEnter)
	t.WaitForLoad()
}

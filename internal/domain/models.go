package domain

import "time"

// QuestionType distinguishes how a question is answered.
type QuestionType string

const (
	QuestionSingle QuestionType = "single"
	QuestionText   QuestionType = "text"
)

// MaxQuestions caps the size of a quiz authored by the operator.
const MaxQuestions = 10

// Question is a single quiz item. Options are only meaningful for single-choice questions.
type Question struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Options  []string     `json:"options"`
	Type     QuestionType `json:"type"`
}

// Quiz is the operator-authored template respondents fill in.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Snapshot is the last successfully fetched copy of a quiz, kept for offline rendering.
type Snapshot struct {
	QuizID    string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CachedAt  time.Time  `json:"cachedAt"`
}

// Respondent holds the contact details collected before a quiz starts.
type Respondent struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Consents records the checkboxes a respondent ticked.
type Consents struct {
	Terms          bool `json:"terms"`
	Marketing      bool `json:"marketing"`
	DataProcessing bool `json:"gdpr"`
}

// Answer pairs a question with the respondent's answer, keeping the question
// text as it was at submission time.
type Answer struct {
	QuestionID string      `json:"questionId"`
	Question   string      `json:"question"`
	Answer     AnswerValue `json:"answer"`
}

// SubmissionDraft is what a respondent hands in; it has no identity yet.
type SubmissionDraft struct {
	Respondent  Respondent `json:"userInfo"`
	QuizID      string     `json:"quizId"`
	QuizTitle   string     `json:"quizTitle"`
	Answers     []Answer   `json:"answers"`
	Consents    Consents   `json:"consents"`
	SubmittedAt time.Time  `json:"submittedAt"`
}

// Submission is a draft with an identifier, ready for remote delivery.
type Submission struct {
	ID string `json:"id"`
	SubmissionDraft
}

// PendingSubmission is a submission stored locally until it is delivered.
type PendingSubmission struct {
	Submission
	Synced    bool      `json:"synced"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoticeLevel grades a user-visible notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message about the outcome of an operation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// SyncReport summarizes one pass of the sync engine.
type SyncReport struct {
	Attempted            int      `json:"attempted"`
	Succeeded            int      `json:"succeeded"`
	NotificationFailures int      `json:"notificationFailures"`
	Failed               []string `json:"failed,omitempty"`
}

// FlowState is the terminal (or transient) state of a submission attempt.
type FlowState string

const (
	FlowIdle       FlowState = "idle"
	FlowAttempting FlowState = "attempting"
	FlowDelivered  FlowState = "delivered"
	FlowQueued     FlowState = "queued"
	FlowFailed     FlowState = "failed"
)

// FlowResult is returned to the respondent after submitting.
type FlowResult struct {
	State        FlowState `json:"state"`
	SubmissionID string    `json:"submissionId,omitempty"`
	Degraded     bool      `json:"degraded,omitempty"`
	Notice       Notice    `json:"notice"`
}

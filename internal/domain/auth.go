package domain

// SubjectType differentiates client vs operator tokens.
type SubjectType string

const (
	SubjectTypeClient   SubjectType = "CLIENT"
	SubjectTypeOperator SubjectType = "OPERATOR"
)

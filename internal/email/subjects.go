package email

const (
	subjectHandoverBriefFmt = "Sales handover: %s"
)

package provider

// Shape tags which payload field of an Outcome is populated.
type Shape int

const (
	// ShapeMessageID confirms an action on, or creation of, one message.
	ShapeMessageID Shape = iota + 1
	// ShapeCount carries only a match count.
	ShapeCount
	// ShapeSummary carries one EmailSummary.
	ShapeSummary
	// ShapeList carries a count and the matched summaries.
	ShapeList
)

// Outcome is the success half of an operation outcome. Failures are reported
// as *Error alongside a nil Outcome.
type Outcome struct {
	Op       Operation
	Provider Kind
	Shape    Shape

	MessageID string
	Count     int
	Summary   *EmailSummary
	Summaries []EmailSummary
}

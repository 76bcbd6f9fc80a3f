package domain

// PushMessage is the payload delivered to a single device token.
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
}

// DispatchOutcome partitions the attempted tokens of one push cycle.
// Delivered and Failed are disjoint and together cover every attempted token.
type DispatchOutcome struct {
	Delivered []string
	Failed    []string
}

// HasFailures reports whether at least one token failed delivery.
func (o DispatchOutcome) HasFailures() bool { return len(o.Failed) > 0 }

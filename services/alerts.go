package services

// StaffAlert is a short message for the staff channel (new applications,
// donation pledges).
type StaffAlert struct {
	Kind    string
	Title   string
	Summary string
	Fields  [][2]string // ordered name/value pairs
}

// AlertPublisher queues alerts for delivery. Implementations must not block
// the caller.
type AlertPublisher interface {
	Publish(StaffAlert)
}

func publish(p AlertPublisher, a StaffAlert) {
	if p != nil {
		p.Publish(a)
	}
}

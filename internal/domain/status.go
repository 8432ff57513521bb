package domain

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusDone     Status = "done"
	StatusCanceled Status = "canceled"
)

// Alur yang diharapkan pending -> paid -> done, canceled dari pending/paid.
// Admin boleh set status apa saja selama nilainya dikenal.
var knownStatus = map[Status]bool{
	StatusPending:  true,
	StatusPaid:     true,
	StatusDone:     true,
	StatusCanceled: true,
}

func (s Status) Valid() bool { return knownStatus[s] }

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", Invalidf("unknown order status %q", s)
	}
	return st, nil
}

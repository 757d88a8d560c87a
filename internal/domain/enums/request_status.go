package enums

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusMatched   RequestStatus = "matched"
	RequestStatusCancelled RequestStatus = "cancelled"
)

func (s RequestStatus) Active() bool {
	return s == RequestStatusPending || s == RequestStatusMatched
}

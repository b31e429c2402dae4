package domain

type Step int

const (
	StepSearch Step = iota + 1
	StepFlightResults
	StepPassengerDetails
	StepPayment
	StepConfirmation
)

func (s Step) Valid() bool {
	return s >= StepSearch && s <= StepConfirmation
}

func (s Step) String() string {
	switch s {
	case StepSearch:
		return "search"
	case StepFlightResults:
		return "flight_results"
	case StepPassengerDetails:
		return "passenger_details"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

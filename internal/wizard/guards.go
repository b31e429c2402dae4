package wizard

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightwizard/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardRegex   = regexp.MustCompile(`^\d{13,19}$`)
	cvvRegex    = regexp.MustCompile(`^\d{3,4}$`)
	expiryRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cardNoise   = strings.NewReplacer(" ", "", "-", "")
)

type SearchForm struct {
	Origin        string                 `json:"origin" validate:"required"`
	Destination   string                 `json:"destination" validate:"required"`
	DepartureDate string                 `json:"departure_date" validate:"required"`
	ReturnDate    string                 `json:"return_date,omitempty"`
	TripType      domain.TripType        `json:"trip_type" validate:"oneof=one-way round-trip"`
	Passengers    domain.PassengerCounts `json:"passengers"`
}

type PassengerForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,basic_email"`
	Phone           string `json:"phone" validate:"required"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// PaymentForm holds raw card details. It is only ever kept in memory for the
// duration of ConfirmPayment.
type PaymentForm struct {
	CardholderName string `json:"cardholder_name" validate:"required"`
	CardNumber     string `json:"card_number" validate:"required,card_number"`
	Expiry         string `json:"expiry" validate:"required,expiry_format,expiry_future"`
	CVV            string `json:"cvv" validate:"required,cvv"`
}

var messages = map[string]string{
	"origin.required":          "Please enter a departure city",
	"destination.required":     "Please enter a destination city",
	"departure_date.required":  "Please select a departure date",
	"trip_type.oneof":          "Please choose a one-way or round-trip flight",
	"name.required":            "Please enter the passenger's full name",
	"email.required":           "Please enter an email address",
	"email.basic_email":        "Please enter a valid email address",
	"phone.required":           "Please enter a phone number",
	"cardholder_name.required": "Please enter the cardholder name",
	"card_number.required":     "Please enter a card number",
	"card_number.card_number":  "Card number must be 13 to 19 digits",
	"expiry.required":          "Please enter the card expiry date",
	"expiry.expiry_format":     "Expiry date must be in MM/YY format",
	"expiry.expiry_future":     "This card has expired",
	"cvv.required":             "Please enter the CVV",
	"cvv.cvv":                  "CVV must be 3 or 4 digits",
}

const (
	msgSameCity       = "Departure and destination cities must be different"
	msgReturnRequired = "Please select a return date for round-trip flights"
	msgAdultRequired  = "At least one adult is required"
	msgTooManyInfants = "Each infant must travel with an adult"
	msgTooManySeats   = "A booking can include at most 9 seated passengers"
	msgNegativeCount  = "Passenger counts cannot be negative"
	msgFlightRequired = "Please select a flight to continue"
)

// Guards holds the validation predicates for each forward transition.
type Guards struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewGuards(now func() time.Time) *Guards {
	g := &Guards{validate: validator.New(), now: now}

	g.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"basic_email":   matches(emailRegex),
		"card_number":   matches(cardRegex),
		"cvv":           matches(cvvRegex),
		"expiry_format": matches(expiryRegex),
		"expiry_future": g.expiryNotPast,
	}
	for tag, fn := range custom {
		// Registration only fails for an empty tag or nil func.
		if err := g.validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return g
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// expiryNotPast accepts a card through the last day of its expiry month.
func (g *Guards) expiryNotPast(fl validator.FieldLevel) bool {
	month, year, ok := parseExpiry(fl.Field().String())
	if !ok {
		return false
	}
	now := g.now()
	if year != now.Year() {
		return year > now.Year()
	}
	return month >= now.Month()
}

func parseExpiry(expiry string) (time.Month, int, bool) {
	m := expiryRegex.FindStringSubmatch(expiry)
	if m == nil {
		return 0, 0, false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return time.Month(month), 2000 + year, true
}

// Search checks the search form and returns the criteria to submit.
func (g *Guards) Search(form SearchForm) (domain.SearchCriteria, error) {
	form.Origin = strings.TrimSpace(form.Origin)
	form.Destination = strings.TrimSpace(form.Destination)
	form.DepartureDate = strings.TrimSpace(form.DepartureDate)
	form.ReturnDate = strings.TrimSpace(form.ReturnDate)
	if form.TripType == "" {
		form.TripType = domain.TripOneWay
	}

	errs := g.structErrors(form)
	if form.Origin != "" && form.Destination != "" && strings.EqualFold(form.Origin, form.Destination) {
		errs = append(errs, ValidationError{Field: "destination", Message: msgSameCity})
	}
	if form.TripType == domain.TripRoundTrip && form.ReturnDate == "" {
		errs = append(errs, ValidationError{Field: "return_date", Message: msgReturnRequired})
	}
	if msg := passengerCountsMessage(form.Passengers); msg != "" {
		errs = append(errs, ValidationError{Field: "passengers", Message: msg})
	}
	if len(errs) > 0 {
		return domain.SearchCriteria{}, errs
	}

	criteria := domain.SearchCriteria{
		Origin:        form.Origin,
		Destination:   form.Destination,
		DepartureDate: form.DepartureDate,
		TripType:      form.TripType,
		Passengers:    form.Passengers,
	}
	if form.TripType == domain.TripRoundTrip {
		criteria.ReturnDate = form.ReturnDate
	}
	return criteria, nil
}

func passengerCountsMessage(p domain.PassengerCounts) string {
	switch {
	case p.Children < 0 || p.Infants < 0:
		return msgNegativeCount
	case p.Adults < domain.MinAdults:
		return msgAdultRequired
	case p.Infants > p.Adults:
		return msgTooManyInfants
	case p.Seats() > domain.MaxSeats:
		return msgTooManySeats
	}
	return ""
}

func (g *Guards) Passenger(form PassengerForm) (domain.PassengerInfo, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.SpecialRequests = strings.TrimSpace(form.SpecialRequests)

	if errs := g.structErrors(form); len(errs) > 0 {
		return domain.PassengerInfo{}, errs
	}
	return domain.PassengerInfo{
		Name:            form.Name,
		Email:           form.Email,
		Phone:           form.Phone,
		SpecialRequests: form.SpecialRequests,
	}, nil
}

// Payment checks the card details. It returns the storable summary and the
// normalised card number, which must not outlive the payment call.
func (g *Guards) Payment(form PaymentForm) (domain.PaymentInfo, string, error) {
	form.CardholderName = strings.TrimSpace(form.CardholderName)
	form.CardNumber = NormalizeCardNumber(form.CardNumber)
	form.Expiry = strings.TrimSpace(form.Expiry)
	form.CVV = strings.TrimSpace(form.CVV)

	if errs := g.structErrors(form); len(errs) > 0 {
		return domain.PaymentInfo{}, "", errs
	}
	return domain.PaymentInfo{
		CardholderName: form.CardholderName,
		CardLast4:      form.CardNumber[len(form.CardNumber)-4:],
		Expiry:         form.Expiry,
	}, form.CardNumber, nil
}

// NormalizeCardNumber drops the spaces and dashes people type between digit
// groups.
func NormalizeCardNumber(number string) string {
	return cardNoise.Replace(strings.TrimSpace(number))
}

func (g *Guards) structErrors(form any) ValidationErrors {
	err := g.validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "form", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: msg})
	}
	return out
}

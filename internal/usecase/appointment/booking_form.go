package appointment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	domain "github.com/BruksfildServices01/companion-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/companion-booking/internal/httperr"
	"github.com/BruksfildServices01/companion-booking/internal/timezone"
	"github.com/BruksfildServices01/companion-booking/internal/validators"
)

// ======================================================
// FORM VALUE
// ======================================================

// FormValue aceita escalar ou array (artefato do formulário em etapas) e
// guarda o primeiro valor não vazio.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case []any:
		vals := make([]string, 0, len(t))
		for _, item := range t {
			vals = append(vals, scalarString(item))
		}
		*v = FormValue(firstNonEmpty(vals))
	default:
		*v = FormValue(strings.TrimSpace(scalarString(t)))
	}
	return nil
}

func (v FormValue) String() string {
	return string(v)
}

func scalarString(x any) string {
	switch t := x.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func firstNonEmpty(vals []string) string {
	for _, s := range vals {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// ======================================================
// FORM
// ======================================================

type BookingForm struct {
	Type     FormValue `json:"type"`
	Name     FormValue `json:"name"`
	Email    FormValue `json:"email"`
	Password FormValue `json:"password"`
	Contact  FormValue `json:"contact"`
	CPF      FormValue `json:"cpf"`

	Service  FormValue `json:"service"`
	Location FormValue `json:"location"`

	AppointmentDate FormValue `json:"appointment_date"`
	AppointmentTime FormValue `json:"appointment_time"`
	PaymentMethod   FormValue `json:"payment_method"`
}

// BookingFormFromValues lê um corpo form-urlencoded; chaves repetidas
// ("name=&name=Ana") seguem a mesma regra do JSON.
func BookingFormFromValues(vals url.Values) BookingForm {
	get := func(key string) FormValue {
		v := vals[key]
		if len(v) == 0 {
			v = vals[key+"[]"]
		}
		return FormValue(firstNonEmpty(v))
	}

	return BookingForm{
		Type:            get("type"),
		Name:            get("name"),
		Email:           get("email"),
		Password:        get("password"),
		Contact:         get("contact"),
		CPF:             get("cpf"),
		Service:         get("service"),
		Location:        get("location"),
		AppointmentDate: get("appointment_date"),
		AppointmentTime: get("appointment_time"),
		PaymentMethod:   get("payment_method"),
	}
}

// ======================================================
// DATE
// ======================================================

var (
	brDate  = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseFormDate converte dd-mm-yyyy para yyyy-mm-dd; yyyy-mm-dd passa direto.
func ParseFormDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if m := brDate.FindStringSubmatch(s); m != nil {
		s = fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
	}

	if !isoDate.MatchString(s) {
		return "", httperr.ErrBusinessDetail("invalid_date", raw)
	}
	if _, err := timezone.ParseISODate(s); err != nil {
		return "", httperr.ErrBusinessDetail("invalid_date", raw)
	}
	return s, nil
}

// ======================================================
// NORMALIZED REQUEST
// ======================================================

type bookingRequest struct {
	Origin   domain.UserOrigin
	Name     string
	Email    string
	Password string
	Contact  string
	CPF      string // só dígitos, já validado; vazio = usar o do cadastro

	ServiceID  uint
	LocationID *uint

	Date string
	Time string
}

func (f BookingForm) normalize() (bookingRequest, error) {
	req := bookingRequest{
		Origin:   domain.ParseOrigin(f.Type.String()),
		Name:     f.Name.String(),
		Email:    strings.ToLower(f.Email.String()),
		Password: f.Password.String(),
		Contact:  f.Contact.String(),
	}

	if req.Email != "" && !validators.IsEmailSyntaxValid(req.Email) {
		return req, httperr.ErrBusinessDetail("invalid_email", req.Email)
	}

	if raw := f.CPF.String(); raw != "" {
		cpf, err := validators.ValidateCPF(raw)
		if err != nil {
			return req, httperr.ErrBusiness("invalid_cpf")
		}
		req.CPF = cpf
	}

	serviceID, err := strconv.ParseUint(f.Service.String(), 10, 64)
	if err != nil || serviceID == 0 {
		return req, httperr.ErrBusiness("invalid_service")
	}
	req.ServiceID = uint(serviceID)

	if loc, err := strconv.ParseUint(f.Location.String(), 10, 64); err == nil && loc > 0 {
		id := uint(loc)
		req.LocationID = &id
	}

	if req.Date, err = ParseFormDate(f.AppointmentDate.String()); err != nil {
		return req, err
	}

	req.Time = domain.NormalizeTime(f.AppointmentTime.String())
	if !domain.IsDailySlot(req.Time) {
		return req, httperr.ErrBusinessDetail("invalid_time", f.AppointmentTime.String())
	}

	return req, nil
}

package payments

import (
	"net/url"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	urlkit "github.com/goliatone/go-urlkit"
)

// SuccessPath is the payment success page every redirect lands on.
const SuccessPath = "/payment/success/"

const (
	routeGroup   = "payments"
	routeSuccess = "success"

	textCodeSuccessArgs = "SUCCESS_URL_ARGS_MISSING"
)

// Query parameter names of the success redirect.
const (
	ParamAmount    = "amount"
	ParamPageSlug  = "pageSlug"
	ParamRPSlug    = "rpSlug"
	ParamEmail     = "email"
	ParamFrequency = "frequency"
	ParamFromPath  = "fromPath"
	ParamNext      = "next"
	ParamUID       = "uid"
)

// SuccessURLArgs carries the pre-formatted values of the success redirect.
// Every field is required; Amount is already formatted by the caller, so a
// literal "0" is a valid amount.
type SuccessURLArgs struct {
	Origin           string `json:"origin"`
	ThankYouRedirect string `json:"thankYouRedirect"`
	Amount           string `json:"amount"`
	EmailHash        string `json:"emailHash"`
	FrequencyDisplay string `json:"frequencyDisplay"`
	ContributorEmail string `json:"contributorEmail"`
	PageSlug         string `json:"pageSlug"`
	RPSlug           string `json:"rpSlug"`
	PathName         string `json:"pathName"`
}

// Validate reports every missing argument.
func (a SuccessURLArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Origin, validation.Required),
		validation.Field(&a.ThankYouRedirect, validation.Required),
		validation.Field(&a.Amount, validation.Required),
		validation.Field(&a.EmailHash, validation.Required),
		validation.Field(&a.FrequencyDisplay, validation.Required),
		validation.Field(&a.ContributorEmail, validation.Required),
		validation.Field(&a.PageSlug, validation.Required),
		validation.Field(&a.RPSlug, validation.Required),
		validation.Field(&a.PathName, validation.Required),
	)
}

// BuildSuccessURL returns the absolute payment success URL. It performs no
// formatting of its own beyond query encoding.
func BuildSuccessURL(args SuccessURLArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", missingArgsError(err)
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{{
			Name:    routeGroup,
			BaseURL: strings.TrimRight(args.Origin, "/"),
			Paths:   map[string]string{routeSuccess: SuccessPath},
		}},
	})
	base, err := manager.Group(routeGroup).Builder(routeSuccess).Build()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "build payment success url")
	}

	fromPath := args.PathName
	if fromPath == "/" {
		fromPath = ""
	}
	query := url.Values{}
	query.Set(ParamAmount, args.Amount)
	query.Set(ParamPageSlug, args.PageSlug)
	query.Set(ParamRPSlug, args.RPSlug)
	query.Set(ParamEmail, args.ContributorEmail)
	query.Set(ParamFrequency, args.FrequencyDisplay)
	query.Set(ParamFromPath, fromPath)
	query.Set(ParamNext, args.ThankYouRedirect)
	query.Set(ParamUID, args.EmailHash)

	return base + "?" + query.Encode(), nil
}

func missingArgsError(err error) error {
	wrapped := goerrors.FromOzzoValidation(err, "missing payment success url arguments")
	fields := make([]string, 0, len(wrapped.ValidationErrors))
	for _, fieldErr := range wrapped.ValidationErrors {
		fields = append(fields, fieldErr.Field)
	}
	sort.Strings(fields)
	wrapped.Message = "missing payment success url arguments: " + strings.Join(fields, ", ")
	return wrapped.WithTextCode(textCodeSuccessArgs)
}

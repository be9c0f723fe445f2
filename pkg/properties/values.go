package properties

import (
	"strconv"
	"strings"
	"time"

	"github.com/navikt/notion-table/pkg/notion"
)

// DateSpan is the flat form of a date value carrying both a start and an
// end. Dates without an end flatten to their start string instead.
type DateSpan struct {
	Start string
	End   string
}

func flattenTitle(pv *notion.PropertyValue) any {
	if len(pv.Title) == 0 {
		return nil
	}

	return notion.PlainText(pv.Title)
}

func buildTitle(v any) (*notion.PropertyValue, error) {
	s, err := asString(notion.TypeTitle, v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypeTitle, Title: notion.EncodeRichText(s)}, nil
}

func flattenRichText(pv *notion.PropertyValue) any {
	if len(pv.RichText) == 0 {
		return nil
	}

	return notion.PlainText(pv.RichText)
}

func buildRichText(v any) (*notion.PropertyValue, error) {
	s, err := asString(notion.TypeRichText, v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypeRichText, RichText: notion.EncodeRichText(s)}, nil
}

func flattenNumber(pv *notion.PropertyValue) any {
	if pv.Number == nil {
		return nil
	}

	return *pv.Number
}

func buildNumber(v any) (*notion.PropertyValue, error) {
	n, err := asFloat(v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypeNumber, Number: &n}, nil
}

func flattenSelect(pv *notion.PropertyValue) any {
	if pv.Select == nil {
		return nil
	}

	return pv.Select.Name
}

func buildSelect(v any) (*notion.PropertyValue, error) {
	s, err := asString(notion.TypeSelect, v)
	if err != nil {
		return nil, err
	}

	opt := notion.SelectOption{Name: s}
	if err := opt.Validate(); err != nil {
		return nil, conversionErr(notion.TypeSelect, v, err.Error())
	}

	return &notion.PropertyValue{Type: notion.TypeSelect, Select: &opt}, nil
}

func flattenMultiSelect(pv *notion.PropertyValue) any {
	if len(pv.MultiSelect) == 0 {
		return nil
	}

	out := make([]string, len(pv.MultiSelect))
	for i, opt := range pv.MultiSelect {
		out[i] = opt.Name
	}

	return out
}

func buildMultiSelect(v any) (*notion.PropertyValue, error) {
	labels, err := asStringList(notion.TypeMultiSelect, v)
	if err != nil {
		return nil, err
	}

	opts := make([]notion.SelectOption, len(labels))
	for i, label := range labels {
		opts[i] = notion.SelectOption{Name: label}
		if err := opts[i].Validate(); err != nil {
			return nil, conversionErr(notion.TypeMultiSelect, v, err.Error())
		}
	}

	return &notion.PropertyValue{Type: notion.TypeMultiSelect, MultiSelect: opts}, nil
}

func flattenDate(pv *notion.PropertyValue) any {
	if pv.Date == nil || pv.Date.Start == "" {
		return nil
	}

	if pv.Date.End != "" {
		return DateSpan{Start: pv.Date.Start, End: pv.Date.End}
	}

	return pv.Date.Start
}

func buildDate(v any) (*notion.PropertyValue, error) {
	switch val := v.(type) {
	case string:
		return &notion.PropertyValue{Type: notion.TypeDate, Date: &notion.DateValue{Start: val}}, nil
	case time.Time:
		return &notion.PropertyValue{Type: notion.TypeDate, Date: &notion.DateValue{Start: val.Format(time.RFC3339)}}, nil
	case DateSpan:
		return &notion.PropertyValue{Type: notion.TypeDate, Date: &notion.DateValue{Start: val.Start, End: val.End}}, nil
	default:
		return nil, conversionErr(notion.TypeDate, v, "expected a date string, time.Time or DateSpan")
	}
}

func flattenPeople(pv *notion.PropertyValue) any {
	if len(pv.People) == 0 {
		return nil
	}

	out := make([]string, len(pv.People))
	for i, u := range pv.People {
		out[i] = u.Name
		if out[i] == "" {
			out[i] = u.ID
		}
	}

	return out
}

func buildPeople(v any) (*notion.PropertyValue, error) {
	ids, err := asStringList(notion.TypePeople, v)
	if err != nil {
		return nil, err
	}

	users := make([]notion.User, len(ids))
	for i, id := range ids {
		users[i] = notion.User{Object: "user", ID: id}
		if err := users[i].Validate(); err != nil {
			return nil, conversionErr(notion.TypePeople, v, err.Error())
		}
	}

	return &notion.PropertyValue{Type: notion.TypePeople, People: users}, nil
}

func flattenFiles(pv *notion.PropertyValue) any {
	if len(pv.Files) == 0 {
		return nil
	}

	out := make([]string, len(pv.Files))
	for i, f := range pv.Files {
		out[i] = f.URL()
	}

	return out
}

func flattenCheckbox(pv *notion.PropertyValue) any {
	if pv.Checkbox == nil {
		return nil
	}

	return *pv.Checkbox
}

func buildCheckbox(v any) (*notion.PropertyValue, error) {
	b, err := asBool(v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypeCheckbox, Checkbox: &b}, nil
}

func flattenURL(pv *notion.PropertyValue) any {
	if pv.URL == nil || *pv.URL == "" {
		return nil
	}

	return *pv.URL
}

func buildURL(v any) (*notion.PropertyValue, error) {
	s, err := asString(notion.TypeURL, v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypeURL, URL: &s}, nil
}

func flattenEmail(pv *notion.PropertyValue) any {
	if pv.Email == nil || *pv.Email == "" {
		return nil
	}

	return *pv.Email
}

func buildEmail(v any) (*notion.PropertyValue, error) {
	s, err := asString(notion.TypeEmail, v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypeEmail, Email: &s}, nil
}

func flattenPhoneNumber(pv *notion.PropertyValue) any {
	if pv.PhoneNumber == nil || *pv.PhoneNumber == "" {
		return nil
	}

	return *pv.PhoneNumber
}

func buildPhoneNumber(v any) (*notion.PropertyValue, error) {
	s, err := asString(notion.TypePhoneNumber, v)
	if err != nil {
		return nil, err
	}

	return &notion.PropertyValue{Type: notion.TypePhoneNumber, PhoneNumber: &s}, nil
}

// flattenFormula unwraps to the computed type.
func flattenFormula(pv *notion.PropertyValue) any {
	f := pv.Formula
	if f == nil {
		return nil
	}

	switch f.Type {
	case "string":
		if f.String != nil {
			return *f.String
		}
	case "number":
		if f.Number != nil {
			return *f.Number
		}
	case "boolean":
		if f.Boolean != nil {
			return *f.Boolean
		}
	case "date":
		if f.Date != nil {
			return flattenDate(&notion.PropertyValue{Date: f.Date})
		}
	}

	return nil
}

func flattenRelation(pv *notion.PropertyValue) any {
	if len(pv.Relation) == 0 {
		return nil
	}

	out := make([]string, len(pv.Relation))
	for i, ref := range pv.Relation {
		out[i] = ref.ID
	}

	return out
}

func buildRelation(v any) (*notion.PropertyValue, error) {
	ids, err := asStringList(notion.TypeRelation, v)
	if err != nil {
		return nil, err
	}

	refs := make([]notion.PageRef, len(ids))
	for i, id := range ids {
		refs[i] = notion.PageRef{ID: id}
		if err := refs[i].Validate(); err != nil {
			return nil, conversionErr(notion.TypeRelation, v, err.Error())
		}
	}

	return &notion.PropertyValue{Type: notion.TypeRelation, Relation: refs}, nil
}

// flattenRollup unwraps to the aggregated type; array rollups flatten each
// element with its own handler.
func flattenRollup(pv *notion.PropertyValue) any {
	r := pv.Rollup
	if r == nil {
		return nil
	}

	switch r.Type {
	case "number":
		if r.Number != nil {
			return *r.Number
		}
	case "date":
		if r.Date != nil {
			return flattenDate(&notion.PropertyValue{Date: r.Date})
		}
	case "array":
		out := make([]any, 0, len(r.Array))
		for i := range r.Array {
			h, err := For(r.Array[i].Type)
			if err != nil {
				out = append(out, nil)
				continue
			}
			out = append(out, h.Flatten(&r.Array[i]))
		}
		return out
	}

	return nil
}

func flattenCreatedTime(pv *notion.PropertyValue) any {
	if pv.CreatedTime == "" {
		return nil
	}

	return pv.CreatedTime
}

func flattenCreatedBy(pv *notion.PropertyValue) any {
	if pv.CreatedBy == nil {
		return nil
	}

	if pv.CreatedBy.Name != "" {
		return pv.CreatedBy.Name
	}

	return pv.CreatedBy.ID
}

func flattenLastEditedTime(pv *notion.PropertyValue) any {
	if pv.LastEditedTime == "" {
		return nil
	}

	return pv.LastEditedTime
}

func flattenLastEditedBy(pv *notion.PropertyValue) any {
	if pv.LastEditedBy == nil {
		return nil
	}

	if pv.LastEditedBy.Name != "" {
		return pv.LastEditedBy.Name
	}

	return pv.LastEditedBy.ID
}

func asString(t notion.PropertyType, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", conversionErr(t, v, "expected a scalar")
	}
}

func asStringList(t notion.PropertyType, v any) ([]string, error) {
	switch val := v.(type) {
	case []string:
		return val, nil
	case []any:
		out := make([]string, len(val))
		for i, e := range val {
			s, ok := e.(string)
			if !ok {
				return nil, conversionErr(t, v, "expected a list of strings")
			}
			out[i] = s
		}
		return out, nil
	case string:
		// A single label is accepted as a one element list.
		return []string{val}, nil
	default:
		return nil, conversionErr(t, v, "expected a list of strings")
	}
}

func asFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, conversionErr(notion.TypeNumber, v, "string is not numeric")
		}
		return n, nil
	default:
		return 0, conversionErr(notion.TypeNumber, v, "expected a number")
	}
}

func asBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, conversionErr(notion.TypeCheckbox, v, "string is not a boolean")
		}
		return b, nil
	default:
		return false, conversionErr(notion.TypeCheckbox, v, "expected a boolean")
	}
}

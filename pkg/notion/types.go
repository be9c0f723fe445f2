package notion

import (
	"bytes"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goccy/go-json"
)

// PropertyType is the type tag of a database property. The set is closed
// and defined by the workspace API; every tag maps to exactly one pair of
// value and config payload shapes.
type PropertyType string

func (t *PropertyType) String() string {
	if t == nil {
		return ""
	}

	return string(*t)
}

const (
	TypeTitle          PropertyType = "title"
	TypeRichText       PropertyType = "rich_text"
	TypeNumber         PropertyType = "number"
	TypeSelect         PropertyType = "select"
	TypeMultiSelect    PropertyType = "multi_select"
	TypeDate           PropertyType = "date"
	TypePeople         PropertyType = "people"
	TypeFiles          PropertyType = "files"
	TypeCheckbox       PropertyType = "checkbox"
	TypeURL            PropertyType = "url"
	TypeEmail          PropertyType = "email"
	TypePhoneNumber    PropertyType = "phone_number"
	TypeFormula        PropertyType = "formula"
	TypeRelation       PropertyType = "relation"
	TypeRollup         PropertyType = "rollup"
	TypeCreatedTime    PropertyType = "created_time"
	TypeCreatedBy      PropertyType = "created_by"
	TypeLastEditedTime PropertyType = "last_edited_time"
	TypeLastEditedBy   PropertyType = "last_edited_by"
)

// RichTextContentMaxLength is the per-object limit the API enforces on
// rich text content. Longer strings are split on write.
const RichTextContentMaxLength = 2000

type RichText struct {
	Type      string  `json:"type,omitempty"`
	PlainText string  `json:"plain_text,omitempty"`
	Href      *string `json:"href,omitempty"`
	Text      *Text   `json:"text,omitempty"`
}

type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

type Link struct {
	URL string `json:"url"`
}

// EncodeRichText splits s into rich text objects within the content limit.
func EncodeRichText(s string) []RichText {
	runes := []rune(s)

	var out []RichText
	for len(runes) > 0 {
		n := len(runes)
		if n > RichTextContentMaxLength {
			n = RichTextContentMaxLength
		}

		out = append(out, RichText{
			Type:      "text",
			PlainText: string(runes[:n]),
			Text:      &Text{Content: string(runes[:n])},
		})
		runes = runes[n:]
	}

	return out
}

// PlainText concatenates the plain text parts of a rich text list, the
// inverse of EncodeRichText.
func PlainText(rts []RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		if rt.PlainText != "" {
			b.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		}
	}

	return b.String()
}

type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (o SelectOption) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Name,
			validation.Required,
			validation.By(func(interface{}) error {
				// Option names containing commas are rejected by the API.
				if strings.Contains(o.Name, ",") {
					return fmt.Errorf("option name %q contains a comma", o.Name)
				}
				return nil
			}),
		),
	)
}

type DateValue struct {
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
}

type User struct {
	Object    string `json:"object,omitempty"`
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required, is.UUID),
	)
}

// PageRef references another page, used by relation values.
type PageRef struct {
	ID string `json:"id"`
}

func (r PageRef) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, is.UUID),
	)
}

type FileRef struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

type File struct {
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type,omitempty"`
	File     *FileRef `json:"file,omitempty"`
	External *FileRef `json:"external,omitempty"`
}

// URL returns the hosted or external location of the file.
func (f File) URL() string {
	if f.File != nil {
		return f.File.URL
	}
	if f.External != nil {
		return f.External.URL
	}

	return ""
}

type Formula struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

type Rollup struct {
	Type     string          `json:"type"`
	Number   *float64        `json:"number,omitempty"`
	Date     *DateValue      `json:"date,omitempty"`
	Array    []PropertyValue `json:"array,omitempty"`
	Function string          `json:"function,omitempty"`
}

// PropertyValue is one cell payload. Exactly one payload field is set, and
// it must correspond to Type.
type PropertyValue struct {
	ID   string       `json:"id,omitempty"`
	Type PropertyType `json:"type,omitempty"`

	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	Number         *float64       `json:"number,omitempty"`
	Select         *SelectOption  `json:"select,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Date           *DateValue     `json:"date,omitempty"`
	People         []User         `json:"people,omitempty"`
	Files          []File         `json:"files,omitempty"`
	Checkbox       *bool          `json:"checkbox,omitempty"`
	URL            *string        `json:"url,omitempty"`
	Email          *string        `json:"email,omitempty"`
	PhoneNumber    *string        `json:"phone_number,omitempty"`
	Formula        *Formula       `json:"formula,omitempty"`
	Relation       []PageRef      `json:"relation,omitempty"`
	Rollup         *Rollup        `json:"rollup,omitempty"`
	CreatedTime    string         `json:"created_time,omitempty"`
	CreatedBy      *User          `json:"created_by,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty"`
	LastEditedBy   *User          `json:"last_edited_by,omitempty"`
}

type NumberConfig struct {
	Format string `json:"format"`
}

type SelectConfig struct {
	Options []SelectOption `json:"options,omitempty"`
}

func (c SelectConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Options),
	)
}

type FormulaConfig struct {
	Expression string `json:"expression"`
}

type RelationConfig struct {
	DatabaseID         string `json:"database_id"`
	SyncedPropertyName string `json:"synced_property_name,omitempty"`
	SyncedPropertyID   string `json:"synced_property_id,omitempty"`
}

type RollupConfig struct {
	RelationPropertyName string `json:"relation_property_name,omitempty"`
	RelationPropertyID   string `json:"relation_property_id,omitempty"`
	RollupPropertyName   string `json:"rollup_property_name,omitempty"`
	RollupPropertyID     string `json:"rollup_property_id,omitempty"`
	Function             string `json:"function"`
}

// EmptyConfig marks property types whose schema payload is an empty
// object, e.g. {"checkbox": {}}.
type EmptyConfig struct{}

// PropertyConfig is one column definition in a database schema. As with
// PropertyValue, the payload field set must correspond to Type.
type PropertyConfig struct {
	ID   string       `json:"id,omitempty"`
	Type PropertyType `json:"type,omitempty"`

	Title          *EmptyConfig    `json:"title,omitempty"`
	RichText       *EmptyConfig    `json:"rich_text,omitempty"`
	Number         *NumberConfig   `json:"number,omitempty"`
	Select         *SelectConfig   `json:"select,omitempty"`
	MultiSelect    *SelectConfig   `json:"multi_select,omitempty"`
	Date           *EmptyConfig    `json:"date,omitempty"`
	People         *EmptyConfig    `json:"people,omitempty"`
	Files          *EmptyConfig    `json:"files,omitempty"`
	Checkbox       *EmptyConfig    `json:"checkbox,omitempty"`
	URL            *EmptyConfig    `json:"url,omitempty"`
	Email          *EmptyConfig    `json:"email,omitempty"`
	PhoneNumber    *EmptyConfig    `json:"phone_number,omitempty"`
	Formula        *FormulaConfig  `json:"formula,omitempty"`
	Relation       *RelationConfig `json:"relation,omitempty"`
	Rollup         *RollupConfig   `json:"rollup,omitempty"`
	CreatedTime    *EmptyConfig    `json:"created_time,omitempty"`
	CreatedBy      *EmptyConfig    `json:"created_by,omitempty"`
	LastEditedTime *EmptyConfig    `json:"last_edited_time,omitempty"`
	LastEditedBy   *EmptyConfig    `json:"last_edited_by,omitempty"`
}

// PropertyConfigs is a database schema with stable column order. The API
// returns properties as a JSON object; column order is the document order,
// which a plain map would lose, so marshaling is done by hand.
type PropertyConfigs struct {
	Names   []string
	Configs map[string]PropertyConfig
}

func NewPropertyConfigs() *PropertyConfigs {
	return &PropertyConfigs{
		Configs: map[string]PropertyConfig{},
	}
}

func (p *PropertyConfigs) Set(name string, cfg PropertyConfig) {
	if _, ok := p.Configs[name]; !ok {
		p.Names = append(p.Names, name)
	}

	p.Configs[name] = cfg
}

func (p *PropertyConfigs) Get(name string) (PropertyConfig, bool) {
	cfg, ok := p.Configs[name]
	return cfg, ok
}

func (p *PropertyConfigs) Len() int {
	return len(p.Names)
}

func (p *PropertyConfigs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, name := range p.Names {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(p.Configs[name])
		if err != nil {
			return nil, fmt.Errorf("marshaling property %s: %w", name, err)
		}
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (p *PropertyConfigs) UnmarshalJSON(data []byte) error {
	p.Names = nil
	p.Configs = map[string]PropertyConfig{}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object for properties, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected property name, got %v", tok)
		}

		var cfg PropertyConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("decoding property %s: %w", name, err)
		}

		p.Set(name, cfg)
	}

	return nil
}

type Parent struct {
	Type       string `json:"type,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

type Database struct {
	Object     string           `json:"object,omitempty"`
	ID         string           `json:"id"`
	URL        string           `json:"url,omitempty"`
	Title      []RichText       `json:"title,omitempty"`
	Parent     *Parent          `json:"parent,omitempty"`
	Properties *PropertyConfigs `json:"properties"`
}

type Page struct {
	Object         string                   `json:"object,omitempty"`
	ID             string                   `json:"id"`
	URL            string                   `json:"url,omitempty"`
	CreatedTime    string                   `json:"created_time,omitempty"`
	LastEditedTime string                   `json:"last_edited_time,omitempty"`
	Parent         *Parent                  `json:"parent,omitempty"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// QueryResult is one page of a paged database query. NextCursor is opaque
// and only valid against the query that produced it.
type QueryResult struct {
	Object     string  `json:"object"`
	Results    []*Page `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

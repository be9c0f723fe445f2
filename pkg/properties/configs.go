package properties

import (
	"sort"

	"github.com/navikt/notion-table/pkg/notion"
)

// inferEmpty covers the types whose schema payload is an empty object.
func inferEmpty(t notion.PropertyType) func([]any) (notion.PropertyConfig, error) {
	return func([]any) (notion.PropertyConfig, error) {
		return emptyConfig(t), nil
	}
}

func emptyConfig(t notion.PropertyType) notion.PropertyConfig {
	cfg := notion.PropertyConfig{Type: t}

	empty := &notion.EmptyConfig{}
	switch t {
	case notion.TypeTitle:
		cfg.Title = empty
	case notion.TypeRichText:
		cfg.RichText = empty
	case notion.TypeDate:
		cfg.Date = empty
	case notion.TypePeople:
		cfg.People = empty
	case notion.TypeFiles:
		cfg.Files = empty
	case notion.TypeCheckbox:
		cfg.Checkbox = empty
	case notion.TypeURL:
		cfg.URL = empty
	case notion.TypeEmail:
		cfg.Email = empty
	case notion.TypePhoneNumber:
		cfg.PhoneNumber = empty
	case notion.TypeCreatedTime:
		cfg.CreatedTime = empty
	case notion.TypeCreatedBy:
		cfg.CreatedBy = empty
	case notion.TypeLastEditedTime:
		cfg.LastEditedTime = empty
	case notion.TypeLastEditedBy:
		cfg.LastEditedBy = empty
	}

	return cfg
}

func inferNumber([]any) (notion.PropertyConfig, error) {
	return notion.PropertyConfig{
		Type:   notion.TypeNumber,
		Number: &notion.NumberConfig{Format: "number"},
	}, nil
}

// inferSelect enumerates the distinct labels across all sampled values so
// the created column accepts every value the upload will send.
func inferSelect(samples []any) (notion.PropertyConfig, error) {
	opts, err := optionUnion(notion.TypeSelect, samples)
	if err != nil {
		return notion.PropertyConfig{}, err
	}

	return notion.PropertyConfig{
		Type:   notion.TypeSelect,
		Select: &notion.SelectConfig{Options: opts},
	}, nil
}

func inferMultiSelect(samples []any) (notion.PropertyConfig, error) {
	opts, err := optionUnion(notion.TypeMultiSelect, samples)
	if err != nil {
		return notion.PropertyConfig{}, err
	}

	return notion.PropertyConfig{
		Type:        notion.TypeMultiSelect,
		MultiSelect: &notion.SelectConfig{Options: opts},
	}, nil
}

func optionUnion(t notion.PropertyType, samples []any) ([]notion.SelectOption, error) {
	seen := map[string]struct{}{}
	for _, sample := range samples {
		if sample == nil {
			continue
		}

		labels, err := asStringList(t, sample)
		if err != nil {
			return nil, err
		}

		for _, label := range labels {
			seen[label] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]notion.SelectOption, len(names))
	for i, name := range names {
		opts[i] = notion.SelectOption{Name: name}
		if err := opts[i].Validate(); err != nil {
			return nil, err
		}
	}

	return opts, nil
}

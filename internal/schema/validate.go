package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/kartikfr/card-genius/internal/domain"
	cardvalidator "github.com/kartikfr/card-genius/internal/validator"
)

// Validate checks a canonical card before it may enter the catalog.
func Validate(card *domain.Card) error {
	var fields []string

	if err := cardvalidator.Validate.Struct(card); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &SchemaError{Msg: fmt.Sprintf("validate card: %v", err)}
		}
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), describeTag(fe)))
		}
	}

	keys := make([]string, 0, len(card.Rewards))
	for cat := range card.Rewards {
		keys = append(keys, string(cat))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !domain.Category(k).Valid() {
			fields = append(fields, fmt.Sprintf("rewards.%s is not a known category", k))
		}
	}

	owner := make(map[domain.Category]int)
	for g, group := range card.SharedCaps {
		for _, cat := range group.Categories {
			if prev, ok := owner[cat]; ok && prev != g {
				fields = append(fields, fmt.Sprintf("sharedCaps[%d] repeats %s from sharedCaps[%d]", g, cat, prev))
				continue
			}
			owner[cat] = g
		}
	}

	if len(fields) > 0 {
		return &SchemaError{Msg: fmt.Sprintf("card %q is invalid", card.ID), Fields: fields}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
}

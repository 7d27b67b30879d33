// Package transform holds the light clean-up applied to user tables before
// they are persisted.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sagarc03/userload/dataset"
)

// PasswordColumn is the flattened name of the random user password field.
const PasswordColumn = "login.password"

// Options selects which transformations Apply runs.
type Options struct {
	// HashColumns are replaced by their SHA-256 hex digest.
	HashColumns []string
	// Gender and OlderThan filter rows when Gender is set.
	Gender    string
	OlderThan int64
	// ReplaceDots renames login.password to login_password.
	ReplaceDots bool
}

// Apply hashes, filters and renames, in that order.
func Apply(ds *dataset.Dataset, opts Options) (*dataset.Dataset, error) {
	var err error
	for _, col := range opts.HashColumns {
		ds, err = HashColumn(ds, col)
		if err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
	}

	if opts.Gender != "" {
		ds = FilterGenderOlderThan(ds, opts.Gender, opts.OlderThan)
	}

	if opts.ReplaceDots {
		ds, err = ReplaceDots(ds)
		if err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
	}

	return ds, nil
}

// HashColumn replaces every value of the named column with its SHA-256 hex
// digest. Nil values stay nil.
func HashColumn(ds *dataset.Dataset, name string) (*dataset.Dataset, error) {
	hashed, err := ds.MapColumn(name, dataset.Text, func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:]), nil
	})
	if err != nil {
		return nil, fmt.Errorf("hash column: %w", err)
	}
	return hashed, nil
}

// FilterGenderOlderThan keeps rows whose gender equals gender and whose
// dob.age is strictly greater than age.
func FilterGenderOlderThan(ds *dataset.Dataset, gender string, age int64) *dataset.Dataset {
	genderCol := lookup(ds, "gender")
	ageCol := lookup(ds, "dob.age")

	return ds.Filter(func(r dataset.Row) bool {
		g, _ := r.Get(genderCol).(string)
		if g != gender {
			return false
		}
		switch a := r.Get(ageCol).(type) {
		case int64:
			return a > age
		case float64:
			return a > float64(age)
		default:
			return false
		}
	})
}

// ReplaceDots renames columns so nested keys become valid identifiers.
func ReplaceDots(ds *dataset.Dataset) (*dataset.Dataset, error) {
	renamed, err := ds.RenameColumns(ColumnName)
	if err != nil {
		return nil, fmt.Errorf("replace dots: %w", err)
	}
	return renamed, nil
}

// ColumnName is the persisted form of a flattened field name.
func ColumnName(field string) string {
	return strings.ReplaceAll(field, ".", "_")
}

// lookup resolves a field by its dotted name, falling back to the renamed form.
func lookup(ds *dataset.Dataset, field string) string {
	if col, ok := ds.Column(field); ok {
		return col.Name
	}
	return ColumnName(field)
}

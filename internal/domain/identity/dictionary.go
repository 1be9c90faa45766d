// Package identity turns raw finisher records into canonical participant
// identities: name ordering, birth-year and position coercion.
package identity

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
)

// compoundSeparator joins the parts of a compound first name ("Anna-Marie").
const compoundSeparator = "-"

// Dictionary is a set of known first names, matched case-insensitively.
type Dictionary map[string]struct{}

// NewDictionary returns a dictionary holding names.
func NewDictionary(names ...string) Dictionary {
	d := make(Dictionary, len(names))
	for _, n := range names {
		d.Add(n)
	}
	return d
}

// LoadDictionary reads whitespace separated first names from r.
func LoadDictionary(r io.Reader) (Dictionary, error) {
	d := make(Dictionary)
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		d.Add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read first names: %w", err)
	}
	return d, nil
}

// Add inserts name.
func (d Dictionary) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	d[fold(name)] = struct{}{}
}

// Contains reports whether token is a first name. A compound token matches
// when each of its parts is a first name.
func (d Dictionary) Contains(token string) bool {
	if token == "" {
		return false
	}
	if _, ok := d[fold(token)]; ok {
		return true
	}
	if !strings.Contains(token, compoundSeparator) {
		return false
	}
	for _, part := range strings.Split(token, compoundSeparator) {
		if _, ok := d[fold(part)]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of names.
func (d Dictionary) Len() int { return len(d) }

func fold(s string) string {
	return cases.Fold().String(s)
}

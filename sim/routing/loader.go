package routing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/phasesim/sim/modeling"
)

// ErrSyntax is wrapped by errors about malformed border files.
var ErrSyntax = errors.New("syntax error")

// ErrUnknownComponent is returned when a border file names a component that
// is not registered.
var ErrUnknownComponent = errors.New("unknown component")

// A Lookup finds components by name.
type Lookup interface {
	Lookup(name string) (modeling.Component, bool)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(name string) (modeling.Component, bool)

// Lookup calls f(name).
func (f LookupFunc) Lookup(name string) (modeling.Component, bool) {
	return f(name)
}

// An AssociationLine is one parsed line of a border file.
type AssociationLine struct {
	Line    int
	Sources []modeling.Address
	Targets []modeling.Address
}

// LoadBorder reads a border file and builds a border from it. Each line has
// the form
//
//	Name1:Key1,Name2:Key2 -> Name3:Key3,Name4:Key4
//
// and associates every left-hand address with every right-hand address.
// Blank lines and lines starting with # are ignored. A key written as *
// matches every key of the component.
func LoadBorder(r io.Reader, lookup Lookup) (*Border, error) {
	b := NewBorder()

	if err := LoadInto(b, r, lookup); err != nil {
		return nil, err
	}

	return b, nil
}

// LoadInto adds the associations of a border file to an existing border.
func LoadInto(b *Border, r io.Reader, lookup Lookup) error {
	lines, err := ParseAssociations(r, lookup)
	if err != nil {
		return err
	}

	for _, l := range lines {
		if err := b.AssociateAll(l.Sources, l.Targets, nil); err != nil {
			return fmt.Errorf("line %d: %w", l.Line, err)
		}
	}

	return nil
}

// ParseAssociations parses a border file without building a border.
func ParseAssociations(r io.Reader, lookup Lookup) ([]AssociationLine, error) {
	var lines []AssociationLine

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		line, err := parseLine(text, lookup)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		line.Line = lineNo
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func parseLine(text string, lookup Lookup) (AssociationLine, error) {
	left, right, found := strings.Cut(text, "->")
	if !found || strings.Contains(right, "->") {
		return AssociationLine{}, fmt.Errorf(
			"%w: expected exactly one '->' in %q", ErrSyntax, text)
	}

	sources, err := parseAddresses(left, lookup)
	if err != nil {
		return AssociationLine{}, err
	}

	targets, err := parseAddresses(right, lookup)
	if err != nil {
		return AssociationLine{}, err
	}

	return AssociationLine{Sources: sources, Targets: targets}, nil
}

func parseAddresses(side string, lookup Lookup) ([]modeling.Address, error) {
	var addrs []modeling.Address

	for _, item := range strings.Split(side, ",") {
		item = strings.TrimSpace(item)

		name, key, found := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		key = strings.TrimSpace(key)

		if !found || name == "" || key == "" {
			return nil, fmt.Errorf(
				"%w: address %q is not of the form Name:Key", ErrSyntax, item)
		}

		comp, ok := lookup.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
		}

		addr := modeling.AnyKeyOf(comp)
		if key != "*" {
			addr.Key = modeling.Key(key)
		}

		addrs = append(addrs, addr)
	}

	return addrs, nil
}

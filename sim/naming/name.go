package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// A Name is a hierarchical name that includes a series of tokens separated
// by dots.
type Name struct {
	Tokens []NameToken
}

// NameToken is a token of a name.
type NameToken struct {
	ElemName string
	Index    []int
}

// ErrInvalidName is wrapped by every name validation failure.
var ErrInvalidName = errors.New("invalid name")

// ParseName parses a name string into its tokens.
func ParseName(sname string) (Name, error) {
	tokens := strings.Split(sname, ".")
	name := Name{Tokens: make([]NameToken, len(tokens))}

	for i, token := range tokens {
		t, err := parseNameToken(token)
		if err != nil {
			return Name{}, err
		}

		name.Tokens[i] = t
	}

	return name, nil
}

func parseNameToken(token string) (NameToken, error) {
	if err := bracketsMustMatch(token); err != nil {
		return NameToken{}, err
	}

	ts := strings.Split(token, "[")
	elemName := ts[0]

	indices := make([]int, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		index, err := strconv.Atoi(strings.TrimSuffix(ts[i], "]"))
		if err != nil {
			return NameToken{}, errors.New("index must be an integer")
		}

		indices[i-1] = index
	}

	return NameToken{ElemName: elemName, Index: indices}, nil
}

func bracketsMustMatch(token string) error {
	open := 0

	for _, c := range token {
		switch c {
		case '[':
			open++
		case ']':
			open--
			if open < 0 {
				return errors.New("brackets must match")
			}
		}
	}

	if open != 0 {
		return errors.New("brackets must match")
	}

	return nil
}

// ValidateName checks the naming convention.
//  1. Names are hierarchical, for example "A.B.C". "A.B." is not valid.
//  2. Individual elements must not be empty; "A..B" is not valid.
//  3. Elements are capitalized CamelCase.
//  4. Elements in a series use square-bracket indices, "Core[3]".
//  5. Elements never contain separators used by border files (":", ",",
//     "->", "*") or whitespace.
func ValidateName(name string) error {
	n, err := ParseName(name)
	if err != nil {
		return fmt.Errorf("%w %q: %s", ErrInvalidName, name, err)
	}

	for _, token := range n.Tokens {
		if err := tokenMustBeValid(token); err != nil {
			return fmt.Errorf("%w %q: %s", ErrInvalidName, name, err)
		}
	}

	return nil
}

// NameMustBeValid panics if the name does not follow the naming convention.
func NameMustBeValid(name string) {
	if err := ValidateName(name); err != nil {
		panic(err.Error())
	}
}

func tokenMustBeValid(token NameToken) error {
	if token.ElemName == "" {
		return errors.New("element must not be empty")
	}

	invalidChars := []string{
		"_", "\"", "'", "-", ":", ",", "*", ">", " ", "\t",
	}

	for _, c := range invalidChars {
		if strings.Contains(token.ElemName, c) {
			return fmt.Errorf("element must not contain %q", c)
		}
	}

	if token.ElemName[0] < 'A' || token.ElemName[0] > 'Z' {
		return errors.New("element must start with a capital letter")
	}

	return nil
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name and an
// index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}

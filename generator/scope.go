package generator

import (
	"errors"
	"fmt"
)

// RedeclaredError reports two package-level declarations of a generated
// package that share a name.
type RedeclaredError struct {
	Name   string
	First  string
	Second string
}

func (e *RedeclaredError) Error() string {
	return fmt.Sprintf("%s and %s both declare %s", e.First, e.Second, e.Name)
}

func (e *RedeclaredError) Unwrap() error {
	return ErrCollision
}

// scope records where each package-level name of a generated package
// comes from.
type scope struct {
	origins map[string]string
	errs    []error
}

func newScope() *scope {
	return &scope{origins: make(map[string]string)}
}

func (s *scope) declare(name, origin string) {
	if prev, ok := s.origins[name]; ok {
		s.errs = append(s.errs, &RedeclaredError{Name: name, First: prev, Second: origin})
		return
	}
	s.origins[name] = origin
}

func (s *scope) err() error {
	return errors.Join(s.errs...)
}

// checkScope declares every package-level identifier the templates emit
// for data, in file order, and reports each name declared twice.
func checkScope(data templateData) error {
	s := newScope()

	for _, name := range []string{"lib", "Load", "Close", "getLibraryPath"} {
		s.declare(name, "loader")
	}
	for _, r := range data.Routines {
		s.declare(r.Var, "loader")
	}
	for _, g := range data.Globals {
		s.declare(g.Var, "loader")
	}

	for _, r := range data.Records {
		s.declare(r.Name, fmt.Sprintf("%s record", r.Section))
		s.declare(r.Default, fmt.Sprintf("%s defaults", r.Section))
	}
	if !data.Global {
		s.declare(data.ContextType(), "model context")
	}

	for _, v := range data.Views {
		s.declare(v.Kind, fmt.Sprintf("%s kind type", v.Section))
		s.declare(v.Prefix, fmt.Sprintf("%s view type", v.Section))
		s.declare(v.NamesVar, fmt.Sprintf("%s kind names", v.Section))
		for _, f := range v.Fields {
			s.declare(v.Prefix+f.GoName, fmt.Sprintf("%s kind of field %q (line %d)", v.Section, f.Name, f.Line))
		}
	}

	typeName := fmt.Sprintf("type %q", data.TypeName)
	if data.Global {
		s.declare("slot", "controller")
		for _, v := range data.Views {
			s.declare(data.TypeName+v.Prefix+"s", fmt.Sprintf("%s views of %s", v.Section, typeName))
		}
	}
	s.declare(data.TypeName, "wrapper "+typeName)
	if data.Alias != "" {
		s.declare(data.Alias, fmt.Sprintf("alias %q", data.Alias))
	}
	s.declare("New"+data.TypeName, "constructor of "+typeName)
	if data.Global {
		s.declare("Run"+data.TypeName, "runner of "+typeName)
	}

	return s.err()
}

package jack

import (
	"fmt"
	"strings"

	"github.com/hmny-labs/n2t-toolchain/pkg/utils"
)

// Scope is one named bucket of declarations (a class's fields, a subroutine's locals or
// parameters, ...), tracked as a stack so that the most recently pushed declaration of a
// given name shadows any earlier one with the same name.
type Scope struct {
	name    string
	entries utils.Stack[Variable]
}

// ScopeTable tracks every variable visible while lowering one class: the file-wide
// static segment plus, at any given moment, at most one class's fields and at most one
// subroutine's locals and parameters. Its zero value is a valid, empty table.
type ScopeTable struct {
	static utils.Stack[Variable]

	field     Scope
	local     Scope
	parameter Scope
}

// NewScopeTable returns an empty ScopeTable, equivalent to the zero value.
func NewScopeTable() *ScopeTable {
	return &ScopeTable{}
}

// PushClassScope opens the field scope for 'class', replacing whatever field scope (if
// any) was previously open. Every subsequent field registration belongs to this class
// until PopClassScope is called.
func (st *ScopeTable) PushClassScope(class string) {
	st.field = Scope{name: class + ".Global"}
}

// PopClassScope closes the currently open field scope.
func (st *ScopeTable) PopClassScope() {
	st.field = Scope{}
}

// PushSubRoutineScope opens fresh local and parameter scopes for 'method', named by
// substituting the method name into the enclosing class scope's name.
func (st *ScopeTable) PushSubRoutineScope(method string) {
	qualified := strings.Replace(st.GetScope(), "Global", method, 1)
	st.local = Scope{name: qualified}
	st.parameter = Scope{name: qualified}
}

// PopSubroutineScope closes the currently open local and parameter scopes.
func (st *ScopeTable) PopSubroutineScope() {
	st.local, st.parameter = Scope{}, Scope{}
}

// GetScope reports the name of the innermost scope currently open: the subroutine scope
// if one is open, else the class scope, else "Global".
func (st *ScopeTable) GetScope() string {
	if st.local.name != "" && st.parameter.name != "" {
		return st.local.name
	}
	if st.field.name != "" {
		return st.field.name
	}
	return "Global"
}

// RegisterVariable adds 'variable' to whichever scope matches its Type.
func (st *ScopeTable) RegisterVariable(variable Variable) {
	switch variable.Type {
	case Local:
		st.local.entries.Push(variable)
	case Field:
		st.field.entries.Push(variable)
	case Parameter:
		st.parameter.entries.Push(variable)
	case Static:
		st.static.Push(variable)
	}
}

// ResolveVariable looks up 'name' across every open scope, innermost first (local,
// parameter, field, static), and reports its VM-segment offset together with the
// Variable itself. An error is returned if no open scope declares that name.
func (st *ScopeTable) ResolveVariable(name string) (uint16, Variable, error) {
	for _, scope := range []utils.Stack[Variable]{st.local.entries, st.parameter.entries, st.field.entries, st.static} {
		for _, entry := range scope.Iterator() {
			if entry.Element.Name == name {
				return entry.Index, entry.Element, nil
			}
		}
	}

	return 0, Variable{}, fmt.Errorf("variable '%s' undeclared, not found in any scope", name)
}

package game

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
	"sync"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Every concrete action type in the module must be registered here, or its
// entries would dispatch as unregistered at runtime. The check walks the
// module's type information and compares Action implementors against
// ActionTypes.
func TestEveryActionTypeIsRegistered(t *testing.T) {
	pkgs := loadModulePackages(t)

	actionIface := lookupActionInterface(t, pkgs)

	found := map[string]bool{}
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || obj.IsAlias() {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				continue
			}
			if types.IsInterface(named.Underlying()) {
				continue
			}
			if types.Implements(types.NewPointer(named), actionIface) {
				found[pkg.PkgPath+"."+name] = true
			}
		}
	}

	registered := map[string]bool{}
	for _, rt := range ActionTypes() {
		registered[rt.PkgPath()+"."+rt.Name()] = true
	}

	var missing []string
	for name := range found {
		if !registered[name] {
			missing = append(missing, name)
		}
	}
	var stale []string
	for name := range registered {
		if !found[name] {
			stale = append(stale, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(stale)
	if len(missing) > 0 {
		t.Errorf("action types not covered by Register: %s", strings.Join(missing, ", "))
	}
	if len(stale) > 0 {
		t.Errorf("ActionTypes lists types that no longer implement Action: %s", strings.Join(stale, ", "))
	}
}

var (
	modulePkgsOnce sync.Once
	modulePkgs     []*packages.Package
	modulePkgsErr  error
)

func loadModulePackages(t *testing.T) []*packages.Package {
	t.Helper()

	modulePkgsOnce.Do(func() {
		cfg := &packages.Config{
			Mode: packages.NeedName | packages.NeedTypes,
		}
		pkgs, err := packages.Load(cfg, "rewindcore/...")
		if err != nil {
			modulePkgsErr = fmt.Errorf("load module packages: %w", err)
			return
		}
		for _, pkg := range pkgs {
			if len(pkg.Errors) > 0 {
				modulePkgsErr = fmt.Errorf("package %s load errors: %v", pkg.PkgPath, pkg.Errors)
				return
			}
		}
		modulePkgs = pkgs
	})

	if modulePkgsErr != nil {
		t.Fatalf("module package load: %v", modulePkgsErr)
	}
	return modulePkgs
}

func lookupActionInterface(t *testing.T, pkgs []*packages.Package) *types.Interface {
	t.Helper()
	for _, pkg := range pkgs {
		if pkg.PkgPath != "rewindcore/internal/core" {
			continue
		}
		obj := pkg.Types.Scope().Lookup("Action")
		if obj == nil {
			t.Fatalf("Action interface not found in core package")
		}
		iface, ok := obj.Type().Underlying().(*types.Interface)
		if !ok {
			t.Fatalf("Action is not an interface")
		}
		return iface
	}
	t.Fatalf("core package not found in load results")
	return nil
}

package integration

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/flagkeep/flagkeep/pkg/audit"
	"github.com/flagkeep/flagkeep/pkg/config"
	"github.com/flagkeep/flagkeep/pkg/identity"
	"github.com/flagkeep/flagkeep/pkg/importer"
	"github.com/flagkeep/flagkeep/pkg/permissions"
)

// nopAuditor drops audit events from imports run by the steps.
type nopAuditor struct{}

func (nopAuditor) Log(context.Context, audit.Event) {}

func (s *StepsContext) registerImportSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I import:$`, s.iImport)
	sc.Step(`^I import with dry run:$`, s.iImportWithDryRun)
	sc.Step(`^the import should have created "([^"]*)"$`, s.theImportShouldHaveCreated)
	sc.Step(`^the import should have left "([^"]*)" unchanged$`, s.theImportShouldHaveLeftUnchanged)
	sc.Step(`^the database should have a (project|group|segment|role) named "([^"]*)"$`, s.theDatabaseShouldHave)
	sc.Step(`^the database should not have a (project|group|segment|role) named "([^"]*)"$`, s.theDatabaseShouldNotHave)
}

func (s *StepsContext) importState(doc string, dryRun bool) error {
	ctx := identity.Set(context.Background(),
		identity.New(0, "integration").WithRootPermissions([]permissions.Permission{permissions.Admin}))

	cfg := config.Default()
	tx := importer.NewGormTransactor(s.tc.DB, func() *config.FlagkeepConfig { return cfg }, nopAuditor{}, zap.NewNop())
	result, err := importer.New(tx, zap.NewNop()).WithDryRun(dryRun).LoadFromReader(ctx, strings.NewReader(doc))
	if err != nil {
		return err
	}
	s.importResult = result
	return nil
}

func (s *StepsContext) iImport(doc *godog.DocString) error {
	return s.importState(doc.Content, false)
}

func (s *StepsContext) iImportWithDryRun(doc *godog.DocString) error {
	return s.importState(doc.Content, true)
}

func (s *StepsContext) theImportShouldHaveCreated(key string) error {
	return expectKey(s.importResult.Created, key, "created")
}

func (s *StepsContext) theImportShouldHaveLeftUnchanged(key string) error {
	return expectKey(s.importResult.Unchanged, key, "unchanged")
}

func expectKey(keys []string, key, action string) error {
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return fmt.Errorf("expected %q to be %s, got %v", key, action, keys)
}

var tablesByKind = map[string]string{
	"project": "projects",
	"group":   "groups",
	"segment": "segments",
	"role":    "roles",
}

func (s *StepsContext) countNamed(kind, name string) (int64, error) {
	var count int64
	err := s.tc.DB.Table(tablesByKind[kind]).Where("name = ?", name).Count(&count).Error
	return count, err
}

func (s *StepsContext) theDatabaseShouldHave(kind, name string) error {
	count, err := s.countNamed(kind, name)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no %s named %q", kind, name)
	}
	return nil
}

func (s *StepsContext) theDatabaseShouldNotHave(kind, name string) error {
	count, err := s.countNamed(kind, name)
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("unexpected %s named %q", kind, name)
	}
	return nil
}

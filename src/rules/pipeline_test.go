package rules_test

import (
	"context"
	"errors"
	"fmt"
	"ledger-rules/src/db/memory"
	"ledger-rules/src/models"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// failingStore fails the atomic write for one entry.
type failingStore struct {
	*memory.Store
	failEntry int64
}

func (f *failingStore) RecordExecution(ctx context.Context, entry models.Entry, rec models.ExecutionRecord) (models.ExecutionRecord, error) {
	if entry.ID == f.failEntry {
		return models.ExecutionRecord{}, errors.New("disk full")
	}
	return f.Store.RecordExecution(ctx, entry, rec)
}

func TestRunAppliesMatchingRuleAndAudits(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	rule := createRule(t, engine, uberRule())
	entry := seedEntry(t, store, models.Entry{Descricao: "Uber trip", Categoria: "outros"})

	res, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{rule.ID}, res.AppliedRuleIDs)
	require.Equal(t, "transporte", res.Entry.Categoria)
	require.Equal(t, "mobilidade", res.Entry.Tags)
	require.Len(t, res.Executions, 1)
	require.Equal(t, models.Diff{
		"categoria": {Before: "outros", After: "transporte"},
		"tags":      {Before: "", After: "mobilidade"},
	}, res.Executions[0].Changes)
	require.Equal(t, models.TriggerCreate, res.Executions[0].Trigger)

	stored, err := store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, "transporte", stored.Categoria)
	require.Equal(t, "mobilidade", stored.Tags)

	got, err := engine.Rules.Get(ctx, rule.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.RunCount)
	require.NotNil(t, got.LastRunAt)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	draft := uberRule()
	draft.Actions = append(draft.Actions, act(models.ActionSetDescriptionPrefix, "[app] "))
	rule := createRule(t, engine, draft)
	entry := seedEntry(t, store, models.Entry{Descricao: "Uber trip", Categoria: "outros"})

	first, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
	require.NoError(t, err)
	require.Len(t, first.AppliedRuleIDs, 1)

	second, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
	require.NoError(t, err)
	require.Empty(t, second.AppliedRuleIDs)
	require.Empty(t, second.Executions)
	require.Equal(t, "[app] Uber trip", second.Entry.Descricao)
	require.Equal(t, "mobilidade", second.Entry.Tags)
	require.Equal(t, 1, store.CountExecutions(rule.ID))
}

func TestRunIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	createRule(t, engine, uberRule())
	createRule(t, engine, models.RuleDraft{
		Priority:   intPtr(10),
		Conditions: []models.Condition{condition(models.FieldValor, models.OpGte, "50")},
		Actions:    []models.Action{act(models.ActionSetStatus, "nao_pago"), act(models.ActionSetTags, "alto")},
	})

	a := seedEntry(t, store, models.Entry{Descricao: "Uber black", Valor: money("80"), Categoria: "outros", Status: "pago"})
	b := seedEntry(t, store, models.Entry{Descricao: "Uber black", Valor: money("80"), Categoria: "outros", Status: "pago"})

	resA, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, a.ID)
	require.NoError(t, err)
	resB, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, b.ID)
	require.NoError(t, err)

	require.Equal(t, resA.AppliedRuleIDs, resB.AppliedRuleIDs)
	require.Len(t, resA.Executions, 2)
	for i := range resA.Executions {
		require.Equal(t, resA.Executions[i].Changes, resB.Executions[i].Changes)
	}
	require.Equal(t, "alto, mobilidade", resA.Entry.Tags)
}

func TestRunOrdersByPriorityThenID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)

	r90 := createRule(t, engine, models.RuleDraft{Priority: intPtr(90), Actions: []models.Action{act(models.ActionSetDescriptionPrefix, "C")}})
	r50 := createRule(t, engine, models.RuleDraft{Priority: intPtr(50), Actions: []models.Action{act(models.ActionSetDescriptionPrefix, "A")}})
	r60 := createRule(t, engine, models.RuleDraft{Priority: intPtr(60), Actions: []models.Action{act(models.ActionSetDescriptionPrefix, "B")}})
	entry := seedEntry(t, store, models.Entry{Descricao: "x"})

	res, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{r50.ID, r60.ID, r90.ID}, res.AppliedRuleIDs)
	require.Equal(t, "CBAx", res.Entry.Descricao)
}

func TestRunBreaksPriorityTiesByID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)

	first := createRule(t, engine, models.RuleDraft{Priority: intPtr(10), Actions: []models.Action{act(models.ActionSetCategory, "first")}})
	second := createRule(t, engine, models.RuleDraft{Priority: intPtr(10), Actions: []models.Action{act(models.ActionSetCategory, "second")}})
	entry := seedEntry(t, store, models.Entry{Descricao: "x", Categoria: "outros"})

	res, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{first.ID, second.ID}, res.AppliedRuleIDs)
	require.Equal(t, "second", res.Entry.Categoria)
	require.Equal(t, models.FieldChange{Before: "first", After: "second"}, res.Executions[1].Changes["categoria"])
}

func TestRunStopAfterApply(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)

	stopper := uberRule()
	stopper.Priority = intPtr(10)
	stopper.StopAfterApply = boolPtr(true)
	stop := createRule(t, engine, stopper)
	later := createRule(t, engine, models.RuleDraft{Priority: intPtr(20), Actions: []models.Action{act(models.ActionSetStatus, "pago")}})

	t.Run("effectful rule stops the walk", func(t *testing.T) {
		entry := seedEntry(t, store, models.Entry{Descricao: "Uber", Categoria: "outros", Status: "em_andamento"})
		res, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
		require.NoError(t, err)
		require.Equal(t, []int64{stop.ID}, res.AppliedRuleIDs)
		require.Equal(t, "em_andamento", res.Entry.Status)
	})

	t.Run("no-op rule does not stop the walk", func(t *testing.T) {
		entry := seedEntry(t, store, models.Entry{Descricao: "Uber", Categoria: "transporte", Tags: "mobilidade", Status: "em_andamento"})
		res, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
		require.NoError(t, err)
		require.Equal(t, []int64{later.ID}, res.AppliedRuleIDs)
		require.Equal(t, "pago", res.Entry.Status)
	})
}

func TestRunHonorsTriggerGatesAndEnabledFlag(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)

	onCreate := createRule(t, engine, models.RuleDraft{Actions: []models.Action{act(models.ActionSetTags, "create")}})
	onEdit := createRule(t, engine, models.RuleDraft{
		ApplyOnCreate: boolPtr(false),
		ApplyOnEdit:   boolPtr(true),
		Actions:       []models.Action{act(models.ActionSetTags, "edit")},
	})
	onImport := createRule(t, engine, models.RuleDraft{
		ApplyOnCreate: boolPtr(false),
		ApplyOnImport: boolPtr(true),
		Actions:       []models.Action{act(models.ActionSetTags, "import")},
	})
	createRule(t, engine, models.RuleDraft{
		IsEnabled:     boolPtr(false),
		ApplyOnEdit:   boolPtr(true),
		ApplyOnImport: boolPtr(true),
		Actions:       []models.Action{act(models.ActionSetTags, "disabled")},
	})

	cases := []struct {
		trigger models.Trigger
		want    int64
		tags    string
	}{
		{models.TriggerCreate, onCreate.ID, "create"},
		{models.TriggerEdit, onEdit.ID, "edit"},
		{models.TriggerImport, onImport.ID, "import"},
	}
	for _, tc := range cases {
		entry := seedEntry(t, store, models.Entry{Descricao: "x"})
		res, err := engine.Dispatcher.Run(ctx, tc.trigger, entry.ID)
		require.NoError(t, err)
		require.Equal(t, []int64{tc.want}, res.AppliedRuleIDs, string(tc.trigger))
		require.Equal(t, tc.tags, res.Entry.Tags)
	}

	entry := seedEntry(t, store, models.Entry{Descricao: "x"})
	_, err := engine.Dispatcher.Run(ctx, models.Trigger("webhook"), entry.ID)
	require.True(t, models.IsValidation(err))
}

func TestRunMissingEntry(t *testing.T) {
	engine := newEngine(t, memory.NewStore())
	_, err := engine.Dispatcher.Run(context.Background(), models.TriggerCreate, 404)
	require.True(t, models.IsNotFound(err))
}

func TestRunPersistenceFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	store := &failingStore{Store: mem}
	engine := newEngine(t, store)

	first := createRule(t, engine, models.RuleDraft{Priority: intPtr(1), Actions: []models.Action{act(models.ActionSetCategory, "lazer")}})
	createRule(t, engine, models.RuleDraft{Priority: intPtr(2), Actions: []models.Action{act(models.ActionSetStatus, "pago")}})
	entry := seedEntry(t, mem, models.Entry{Descricao: "Cinema", Categoria: "outros", Status: "em_andamento"})
	store.failEntry = entry.ID

	res, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
	var pe *models.PersistenceError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, entry.ID, pe.EntryID)
	require.Empty(t, res.AppliedRuleIDs)

	stored, err := mem.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, "outros", stored.Categoria)
	require.Equal(t, "em_andamento", stored.Status)
	require.Zero(t, mem.CountExecutions(first.ID))

	got, err := engine.Rules.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Zero(t, got.RunCount)
}

func TestRunCountMatchesExecutionRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)

	tagger := createRule(t, engine, models.RuleDraft{
		ApplyOnEdit: boolPtr(true),
		Conditions:  []models.Condition{condition(models.FieldValor, models.OpGte, "100")},
		Actions:     []models.Action{act(models.ActionSetTags, "grande")},
	})
	categorizer := createRule(t, engine, uberRule())

	for i := 0; i < 6; i++ {
		entry := seedEntry(t, store, models.Entry{
			Descricao: fmt.Sprintf("Uber %d", i),
			Valor:     money(fmt.Sprintf("%d", i*40)),
		})
		_, err := engine.Dispatcher.Run(ctx, models.TriggerCreate, entry.ID)
		require.NoError(t, err)
		_, err = engine.Dispatcher.Run(ctx, models.TriggerEdit, entry.ID)
		require.NoError(t, err)
	}

	for _, id := range []int64{tagger.ID, categorizer.ID} {
		rule, err := engine.Rules.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, store.CountExecutions(id), rule.RunCount)
	}
	rule, err := engine.Rules.Get(ctx, tagger.ID)
	require.NoError(t, err)
	require.Equal(t, 3, rule.RunCount)
}

func TestRunRuleSerializesWritesPerEntry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	engine := newEngine(t, store)
	entry := seedEntry(t, store, models.Entry{Descricao: "shared"})

	const n = 16
	var created []models.Rule
	for i := 0; i < n; i++ {
		created = append(created, createRule(t, engine, models.RuleDraft{
			Actions: []models.Action{act(models.ActionSetTags, fmt.Sprintf("t%02d", i))},
		}))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, rule := range created {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Dispatcher.RunRule(ctx, rule, entry.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	tags := strings.Split(stored.Tags, ", ")
	require.Len(t, tags, n)
	for i := 0; i < n; i++ {
		require.Contains(t, tags, fmt.Sprintf("t%02d", i))
	}
}

func TestRunRuleRefusesDisabledRule(t *testing.T) {
	store := memory.NewStore()
	engine := newEngine(t, store)
	draft := uberRule()
	draft.IsEnabled = boolPtr(false)
	rule := createRule(t, engine, draft)
	entry := seedEntry(t, store, models.Entry{Descricao: "Uber"})

	_, err := engine.Dispatcher.RunRule(context.Background(), rule, entry.ID)
	require.ErrorIs(t, err, models.ErrRuleDisabled)
}

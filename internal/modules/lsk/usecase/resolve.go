/*
|------------------------------------------------------------------------------------
| USECASE ARCHITECTURAL STANDARDS & OBSERVABILITY MANIFESTO
|------------------------------------------------------------------------------------
|
| Every UseCase implementation MUST satisfy these high-level pillars to
| maintain system integrity and observability hygiene.
|
| [1. COMPLIANCE STANDARDS]
| - Interface-First: UseCases MUST be defined as interfaces to enable decoupled
|   communication and seamless unit testing (mocking).
| - Traceability: Maintain a continuous trace chain from entry to exit.
| - Observability: Ensure actions are searchable via business keys.
| - Validation: Enforce strict DTO validation before domain processing.
| - Atomicity: Guarantee data consistency via TransactionManager.
|
| [2. LOGGING OPERATIONAL SCOPE]
| - MINIMAL LOGS: Each execution logs "started" and either "completed"
|   (if successful) or "failed" (ONLY for internal UseCase logic errors).
| - ERROR BUBBLING: Downstream errors (Repo/Service) are bubbled up
|   without redundant logging to prevent aggregator pollution.
|
|------------------------------------------------------------------------------------
*/
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"voyago/lsk-engine/internal/infrastructure/logger"
	"voyago/lsk-engine/internal/infrastructure/telemetry/tracer"
	"voyago/lsk-engine/internal/modules/lsk/entity"
	"voyago/lsk-engine/internal/modules/lsk/repository"
	"voyago/lsk-engine/internal/modules/lsk/scanner"
	"voyago/lsk-engine/internal/pkg/apperror"
	baserepo "voyago/lsk-engine/internal/pkg/repository"
	"voyago/lsk-engine/internal/pkg/uid"
	"voyago/lsk-engine/internal/pkg/utils"
)

type ResolveRepositories struct {
	Allocator repository.AllocatorRepository
	AuditCmd  repository.AuditCommandRepository
}

// resolveUseCase is the private implementation of ResolveUseCase.
type resolveUseCase struct {
	Log    logger.Logger
	Tracer tracer.Tracer
	Runner baserepo.TransactionManager
	Repo   ResolveRepositories
}

const (
	// useCaseName follows the "Layer:Component.Action" pattern. Used as the
	// Span Name in tracing and the 'action' field in logs.
	resolveUseCaseName = "usecase:lsk.resolve"
)

var _ ResolveUseCase = (*resolveUseCase)(nil)

func NewResolveUseCase(log logger.Logger, trc tracer.Tracer, runner baserepo.TransactionManager, repo ResolveRepositories) ResolveUseCase {
	return &resolveUseCase{
		Log:    log.WithField("action", resolveUseCaseName),
		Tracer: trc,
		Runner: runner,
		Repo:   repo,
	}
}

func (uc *resolveUseCase) Execute(ctx context.Context, req *ResolveRequest) (*ResolveResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, resolveUseCaseName)
	defer span.Finish()

	log := uc.Log.WithContext(ctx).WithField("method", "Exec")

	businessKey := map[string]any{
		"module_name": req.ModuleName,
		"dev_email":   req.DevEmail,
	}
	log.WithFields(map[string]any{"business_key": businessKey}).Info("usecase started")

	// --- PILLAR: INPUT VALIDATION ---
	if req.ModuleName == "" || req.XmlContent == "" || req.DevEmail == "" {
		utils.RecordSpanError(span, entity.ErrInvalidArgument)
		log.Warn("usecase failed")
		return nil, entity.ErrInvalidArgument
	}

	// --- PHASE A: SCAN ---
	// Scanning is a pure, in-memory pass; a document with no placeholders and
	// no references is returned unchanged without ever opening a transaction.
	scanResult, err := scanner.Scan(req.XmlContent)
	if err != nil {
		if errors.Is(err, scanner.ErrInvalidPlaceholder) {
			wrapped := entity.ErrInvalidPlaceholder(err)
			utils.RecordSpanError(span, wrapped)
			log.Warn("usecase failed")
			return nil, wrapped
		}
		utils.RecordSpanError(span, err)
		return nil, err
	}

	if len(scanResult.PKOrder) == 0 && len(scanResult.FKOrder) == 0 {
		log.Info("usecase completed")
		return &ResolveResponse{ResolvedXml: req.XmlContent, Ranges: []ResolvedRange{}}, nil
	}

	// --- PHASE C: REFERENCE RESOLUTION (validated before the transaction) ---
	// Every reference must target a placeholder scanned in this same
	// document; references can never cross documents.
	for _, refString := range scanResult.FKOrder {
		target := scanResult.FKTargets[refString]
		if _, ok := scanResult.PKFragments[target]; !ok {
			utils.RecordSpanError(span, entity.ErrUnresolvedReference)
			log.Warn("usecase failed")
			return nil, entity.ErrUnresolvedReference
		}
	}

	// group placeholders by RangeKey, preserving first-seen order.
	keyOrder, ranges := groupByRangeKey(scanResult, req.ModuleName)

	// --- PHASES B-E: ALLOCATE, ASSIGN, WRITE AUDIT — ONE TRANSACTION ---
	// The advisory lock taken in Phase B must still be held while the audit
	// row for the same key is written in Phase E, so every key's allocate
	// and audit-write pair runs inside a single Atomic() call.
	errRunner := uc.Runner.Atomic(ctx, func(txCtx context.Context) error {
		for _, key := range keyOrder {
			info := ranges[key]

			start, err := uc.Repo.Allocator.NextStartingValue(txCtx, key)
			if err != nil {
				return entity.ErrAllocationFailed(err)
			}

			placeholders := fragmentPlaceholders(scanResult, key)

			info.FirstValue = start
			info.LastValue = start + int64(len(placeholders)) - 1

			for i, placeholder := range placeholders {
				resolved := key.Table + ":" + key.Column + ":" + key.Module + ":" + strconv.FormatInt(start+int64(i), 10)
				info.Mapping[placeholder] = resolved
			}
		}

		// Every key is allocated before any audit row is built, so each row's
		// resolved fragments use the request-wide table (all PKs plus references).
		finalReplacer := buildReplacer(keyOrder, ranges, scanResult, req.ModuleName)

		for _, key := range keyOrder {
			info := ranges[key]

			mappingJSON, err := json.Marshal(info.Mapping)
			if err != nil {
				return entity.ErrAllocationFailed(err)
			}

			resolvedFragments := finalReplacer.Replace(strings.Join(info.Fragments, "\n"))

			auditLog := &entity.AuditLog{
				ID:                  uid.NewUUID(),
				DevEmail:            req.DevEmail,
				TableName:           key.Table,
				ColumnName:          key.Column,
				ModuleName:          key.Module,
				StartValue:          info.FirstValue,
				EndValue:            info.LastValue,
				PlaceholderMapping:  string(mappingJSON),
				SourceXmlElements:   strings.Join(info.Fragments, "\n"),
				ResolvedXmlElements: resolvedFragments,
			}

			if err := uc.Repo.AuditCmd.Insert(txCtx, auditLog); err != nil {
				return err
			}
		}
		return nil
	})
	if errRunner != nil {
		utils.RecordSpanError(span, errRunner)
		return nil, errRunner
	}

	// --- PHASE D: SUBSTITUTION ---
	resolvedXml := buildReplacer(keyOrder, ranges, scanResult, req.ModuleName).Replace(req.XmlContent)

	response := &ResolveResponse{ResolvedXml: resolvedXml}
	for _, key := range keyOrder {
		info := ranges[key]
		response.Ranges = append(response.Ranges, ResolvedRange{
			Table:      key.Table,
			Column:     key.Column,
			Module:     key.Module,
			StartValue: info.FirstValue,
			EndValue:   info.LastValue,
			Mapping:    info.Mapping,
		})
	}

	log.Info("usecase completed")
	return response, nil
}

// groupByRangeKey partitions the scanned PK placeholders by their
// (table, column, module) key, in first-seen key order.
func groupByRangeKey(scanResult *scanner.Result, module string) ([]entity.RangeKey, map[entity.RangeKey]*entity.RangeInfo) {
	ranges := make(map[entity.RangeKey]*entity.RangeInfo)
	var keyOrder []entity.RangeKey

	for _, placeholder := range scanResult.PKOrder {
		key := rangeKeyFromPlaceholder(placeholder, module)
		info, seen := ranges[key]
		if !seen {
			info = entity.NewRangeInfo()
			ranges[key] = info
			keyOrder = append(keyOrder, key)
		}
		info.Fragments = append(info.Fragments, scanResult.PKFragments[placeholder]...)
	}

	return keyOrder, ranges
}

// fragmentPlaceholders returns the placeholders belonging to key in the
// order they were first seen, so assigned values are deterministic.
func fragmentPlaceholders(scanResult *scanner.Result, key entity.RangeKey) []string {
	var out []string
	for _, placeholder := range scanResult.PKOrder {
		if rangeKeyFromPlaceholder(placeholder, key.Module) == key {
			out = append(out, placeholder)
		}
	}
	return out
}

// rangeKeyFromPlaceholder forms the (table, column, module) key of a
// placeholder: table and column come from the placeholder text, module is the
// request's module name.
func rangeKeyFromPlaceholder(placeholder, module string) entity.RangeKey {
	parts := strings.SplitN(placeholder, ":", 3)
	return entity.RangeKey{Table: parts[0], Column: parts[1], Module: module}
}

// buildReplacer returns a replacer that rewrites every quoted placeholder and
// REF:{...} occurrence with its resolved form. It operates as a plain string
// replacement pass rather than re-parsing the document, since scanning
// already proved every occurrence sits inside a quoted attribute value.
func buildReplacer(keyOrder []entity.RangeKey, ranges map[entity.RangeKey]*entity.RangeInfo, scanResult *scanner.Result, module string) *strings.Replacer {
	replacer := make([]string, 0, 2*(len(scanResult.PKOrder)+len(scanResult.FKOrder)))

	for _, key := range keyOrder {
		info := ranges[key]
		for placeholder, resolved := range info.Mapping {
			replacer = append(replacer, `"`+placeholder+`"`, `"`+resolved+`"`)
		}
	}

	for _, refString := range scanResult.FKOrder {
		target := scanResult.FKTargets[refString]
		key := rangeKeyFromPlaceholder(target, module)
		resolved, ok := ranges[key].Mapping[target]
		if !ok {
			continue
		}
		replacer = append(replacer, `"`+refString+`"`, `"`+resolved+`"`)
	}

	return strings.NewReplacer(replacer...)
}

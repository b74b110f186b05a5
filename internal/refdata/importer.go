package refdata

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// batchSize controls progress logging on large files.
const batchSize = 500

// Chart of accounts classes seeded before the account rows, so every
// account can attach to the hierarchy even when its file omits labels.
var chartClasses = []struct{ code, name string }{
	{"1", "Comptes de capitaux"},
	{"2", "Comptes d'immobilisations"},
	{"3", "Comptes de stocks et en-cours"},
	{"4", "Comptes de tiers"},
	{"5", "Comptes financiers"},
	{"6", "Comptes de charges"},
	{"7", "Comptes de produits"},
	{"8", "Comptes spéciaux"},
	{"9", "Comptabilité analytique"},
}

// Result summarises one import run. Skipped counts rows dropped for a
// missing natural key; they are logged, never fatal.
type Result struct {
	Encoding string
	Imported int
	Skipped  int
}

// Importer loads reference data CSV files. One file runs in one
// transaction, so a bad file leaves nothing behind.
type Importer struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewImporter(store Store, logger *slog.Logger) *Importer {
	return &Importer{store: store, logger: logger, now: time.Now}
}

// WithNow overrides the importer clock for testing.
func (im *Importer) WithNow(fn func() time.Time) {
	if fn != nil {
		im.now = fn
	}
}

func (im *Importer) runLogger(file string) *slog.Logger {
	return im.logger.With("import_run", uuid.NewString(), "file", file)
}

// ImportChartOfAccounts seeds the class hierarchy and upserts every account
// row, deriving chapter and section membership from the account number
// prefix the way the source system encodes it.
func (im *Importer) ImportChartOfAccounts(ctx context.Context, path string) (Result, error) {
	reader, encoding, err := OpenCSV(path)
	if err != nil {
		return Result{}, err
	}
	res := Result{Encoding: encoding}
	log := im.runLogger(path)
	log.Info("importing chart of accounts", "encoding", encoding)

	err = im.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		classIDs := make(map[string]int64, len(chartClasses))
		for _, c := range chartClasses {
			id, err := tx.EnsureClass(ctx, c.code, c.name)
			if err != nil {
				return err
			}
			classIDs[c.code] = id
		}

		cols, err := readHeader(reader)
		if err != nil {
			return err
		}
		chapterIDs := make(map[string]int64)
		sectionIDs := make(map[string]int64)
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				res.Skipped++
				log.Warn("skipping malformed row", "error", err)
				continue
			}
			number := cell(record, cols, "NO_CPT_COMPTABLE_GENERAL")
			if number == "" {
				res.Skipped++
				log.Warn("skipping row without account number")
				continue
			}

			classCode := number[:1]
			classID, ok := classIDs[classCode]
			if !ok {
				id, err := tx.EnsureClass(ctx, classCode, "")
				if err != nil {
					return err
				}
				classIDs[classCode] = id
				classID = id
			}

			var sectionID *int64
			if len(number) > 1 {
				chapterCode := number[:2]
				chapterID, ok := chapterIDs[chapterCode]
				if !ok {
					id, err := tx.EnsureChapter(ctx, chapterCode, cell(record, cols, "LIB_CHAPITRE_COMPTABLE"), classID)
					if err != nil {
						return err
					}
					chapterIDs[chapterCode] = id
					chapterID = id
				}
				if len(number) > 2 {
					sectionCode := number[:3]
					id, ok := sectionIDs[sectionCode]
					if !ok {
						id, err = tx.EnsureSection(ctx, sectionCode, cell(record, cols, "LIB_SECTION_COMPTABLE"), chapterID)
						if err != nil {
							return err
						}
						sectionIDs[sectionCode] = id
					}
					sectionID = &id
				}
			}

			shortName := cell(record, cols, "LIB_RED_CPT_COMPTABLE_GENERAL")
			fullName := cell(record, cols, "LIB_CPT_COMPTABLE_GENERAL")
			if shortName == "" {
				shortName = truncate(fullName, 50)
			}
			if fullName == "" {
				fullName = shortName
			}

			isBalanceSheet := true
			if cell(record, cols, "INDIC_BILAN_RESULTAT") == "RESULTAT" || classCode == "6" || classCode == "7" {
				isBalanceSheet = false
			}

			rec := AccountRecord{
				AccountNumber:           number,
				ShortName:               shortName,
				FullName:                fullName,
				SectionID:               sectionID,
				IsBalanceSheet:          isBalanceSheet,
				BudgetAccountCode:       optional(cell(record, cols, "CODE_CPT_BUDG_THEO")),
				RecoveryStatus:          optional(cell(record, cols, "STATUT_RECUP_CPT")),
				FinancialStatementGroup: optional(cell(record, cols, "CODE_REGRP_ETATS_FINANC_CPT")),
			}
			if err := tx.UpsertAccount(ctx, rec); err != nil {
				return err
			}
			res.Imported++
			if res.Imported%batchSize == 0 {
				log.Info("import progress", "accounts", res.Imported)
			}
		}
		return nil
	})
	if err != nil {
		return Result{Encoding: encoding}, err
	}
	log.Info("chart of accounts imported", "accounts", res.Imported, "skipped", res.Skipped)
	return res, nil
}

// ImportJournals upserts accounting journals keyed by their source id.
// Journal codes RAB and RAN mark opening balance journals.
func (im *Importer) ImportJournals(ctx context.Context, path string) (Result, error) {
	return im.importFile(ctx, path, "journals", func(ctx context.Context, tx TxStore, record []string, cols map[string]int, log *slog.Logger) (bool, error) {
		journalID := cell(record, cols, "ID_JOURNAL_COMPTABLE")
		code := cell(record, cols, "CODE_JOURNAL_COMPTABLE")
		if journalID == "" || code == "" {
			log.Warn("skipping journal row without id or code")
			return false, nil
		}
		upper := strings.ToUpper(code)
		company := cell(record, cols, "CODE_SOCIETE")
		if company == "N/A" {
			company = ""
		}
		rec := JournalRecord{
			JournalID:        journalID,
			Code:             code,
			ShortName:        cell(record, cols, "LIB_RED_JOURNAL_COMPTABLE"),
			Name:             cell(record, cols, "LIB_JOURNAL_COMPTABLE"),
			IsOpeningBalance: upper == "RAB" || upper == "RAN",
			CompanyCode:      optional(company),
		}
		return true, tx.UpsertJournal(ctx, rec)
	})
}

// ImportFiscalYears upserts fiscal years keyed by year number. Years run
// January 1 to December 31; years before the current one are closed.
func (im *Importer) ImportFiscalYears(ctx context.Context, path string) (Result, error) {
	currentYear := im.now().Year()
	return im.importFile(ctx, path, "fiscal years", func(ctx context.Context, tx TxStore, record []string, cols map[string]int, log *slog.Logger) (bool, error) {
		yearStr := cell(record, cols, "NO_EXERCICE")
		year, err := strconv.Atoi(yearStr)
		if err != nil || year <= 0 {
			log.Warn("skipping fiscal year row without numeric year", "value", yearStr)
			return false, nil
		}
		name := cell(record, cols, "LIB_EXERCICE_")
		if name == "" {
			name = "EXERCICE " + strconv.Itoa(year)
		}
		rec := FiscalYearRecord{
			Year:      year,
			Name:      name,
			StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			IsCurrent: year == currentYear,
			IsClosed:  year < currentYear,
		}
		return true, tx.UpsertFiscalYear(ctx, rec)
	})
}

// ImportAccountingTypes upserts accounting types keyed by code. The source
// uses the literal strings NULL and ??? for missing values.
func (im *Importer) ImportAccountingTypes(ctx context.Context, path string) (Result, error) {
	return im.importFile(ctx, path, "accounting types", func(ctx context.Context, tx TxStore, record []string, cols map[string]int, log *slog.Logger) (bool, error) {
		code := cell(record, cols, "CODE_TYPE_COMPTABILITE")
		if code == "" || code == "???" {
			log.Warn("skipping accounting type row without code")
			return false, nil
		}
		shortName := cell(record, cols, "LIB_RED_DU_TYPE_COMPTABILITE")
		fullName := cell(record, cols, "LIB_TYPE_COMPTABILITE")
		if shortName == "NULL" || shortName == "" {
			shortName = code
		}
		if fullName == "NULL" || fullName == "" {
			fullName = shortName
		}
		rec := AccountingTypeRecord{
			Code:      code,
			ShortName: shortName,
			FullName:  fullName,
			Nature:    optional(cell(record, cols, "NATURE_DE_COMPTABILITE")),
		}
		return true, tx.UpsertAccountingType(ctx, rec)
	})
}

type rowFunc func(ctx context.Context, tx TxStore, record []string, cols map[string]int, log *slog.Logger) (bool, error)

func (im *Importer) importFile(ctx context.Context, path, what string, row rowFunc) (Result, error) {
	reader, encoding, err := OpenCSV(path)
	if err != nil {
		return Result{}, err
	}
	res := Result{Encoding: encoding}
	log := im.runLogger(path)
	log.Info("importing "+what, "encoding", encoding)

	err = im.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		cols, err := readHeader(reader)
		if err != nil {
			return err
		}
		return im.consume(ctx, reader, tx, cols, log, row, &res)
	})
	if err != nil {
		return Result{Encoding: encoding}, err
	}
	log.Info(what+" imported", "rows", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func (im *Importer) consume(ctx context.Context, reader *csv.Reader, tx TxStore, cols map[string]int, log *slog.Logger, row rowFunc, res *Result) error {
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			res.Skipped++
			log.Warn("skipping malformed row", "error", err)
			continue
		}
		ok, err := row(ctx, tx, record, cols, log)
		if err != nil {
			return err
		}
		if !ok {
			res.Skipped++
			continue
		}
		res.Imported++
		if res.Imported%batchSize == 0 {
			log.Info("import progress", "rows", res.Imported)
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

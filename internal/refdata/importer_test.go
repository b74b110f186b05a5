package refdata

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/meridian-erp/meridian-erp/testing"
)

type fakeTxStore struct {
	classes  map[string]int64
	chapters map[string]int64
	sections map[string]int64
	accounts map[string]AccountRecord
	journals map[string]JournalRecord
	years    map[int]FiscalYearRecord
	types    map[string]AccountingTypeRecord
	nextID   int64
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{
		classes:  map[string]int64{},
		chapters: map[string]int64{},
		sections: map[string]int64{},
		accounts: map[string]AccountRecord{},
		journals: map[string]JournalRecord{},
		years:    map[int]FiscalYearRecord{},
		types:    map[string]AccountingTypeRecord{},
	}
}

func (f *fakeTxStore) id(m map[string]int64, code string) int64 {
	if id, ok := m[code]; ok {
		return id
	}
	f.nextID++
	m[code] = f.nextID
	return f.nextID
}

func (f *fakeTxStore) EnsureClass(_ context.Context, code, _ string) (int64, error) {
	return f.id(f.classes, code), nil
}

func (f *fakeTxStore) EnsureChapter(_ context.Context, code, _ string, _ int64) (int64, error) {
	return f.id(f.chapters, code), nil
}

func (f *fakeTxStore) EnsureSection(_ context.Context, code, _ string, _ int64) (int64, error) {
	return f.id(f.sections, code), nil
}

func (f *fakeTxStore) UpsertAccount(_ context.Context, rec AccountRecord) error {
	f.accounts[rec.AccountNumber] = rec
	return nil
}

func (f *fakeTxStore) UpsertJournal(_ context.Context, rec JournalRecord) error {
	f.journals[rec.JournalID] = rec
	return nil
}

func (f *fakeTxStore) UpsertFiscalYear(_ context.Context, rec FiscalYearRecord) error {
	f.years[rec.Year] = rec
	return nil
}

func (f *fakeTxStore) UpsertAccountingType(_ context.Context, rec AccountingTypeRecord) error {
	f.types[rec.Code] = rec
	return nil
}

type fakeStore struct {
	tx *fakeTxStore
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return fn(ctx, f.tx)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpenCSVProbesLatin1(t *testing.T) {
	// "Journal généré" with a latin1 0xE9 for the accented e.
	data := []byte("CODE;NAME\nOD;Journal g\xe9n\xe9r\xe9\n")
	path := writeFile(t, "journals.csv", data)

	reader, encoding, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if encoding != "latin1" {
		t.Fatalf("expected latin1, got %s", encoding)
	}
	if _, err := reader.Read(); err != nil {
		t.Fatalf("read header: %v", err)
	}
	record, err := reader.Read()
	if err != nil {
		t.Fatalf("read row: %v", err)
	}
	if record[1] != "Journal généré" {
		t.Fatalf("latin1 decode wrong: %q", record[1])
	}
}

func TestOpenCSVStripsUTF8BOM(t *testing.T) {
	// A BOM-prefixed file still decodes, the BOM never leaks into the header.
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("CODE;NAME\nX;y\n")...)
	path := writeFile(t, "bom.csv", data)

	reader, encoding, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if encoding != "utf-8-sig" {
		t.Fatalf("expected utf-8-sig, got %s", encoding)
	}
	cols, err := readHeader(reader)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	if _, ok := cols["CODE"]; !ok {
		t.Fatalf("BOM leaked into header: %v", cols)
	}
}

func TestImportChartOfAccounts(t *testing.T) {
	csvData := "NO_CPT_COMPTABLE_GENERAL;LIB_CHAPITRE_COMPTABLE;LIB_SECTION_COMPTABLE;LIB_RED_CPT_COMPTABLE_GENERAL;LIB_CPT_COMPTABLE_GENERAL;INDIC_BILAN_RESULTAT\n" +
		"606300;Achats;Fournitures;FOURN;Fournitures d'entretien;\n" +
		"512000;Banques;Banques;BANQUE;Banques;BILAN\n" +
		";Orphan;;;;\n"
	path := writeFile(t, "pcg.csv", []byte(csvData))

	tx := newFakeTxStore()
	im := NewImporter(&fakeStore{tx: tx}, slog.Default())

	res, err := im.ImportChartOfAccounts(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// Seed classes plus the two rows' own classes already seeded.
	if len(tx.classes) != 9 {
		t.Fatalf("expected 9 seeded classes, got %d", len(tx.classes))
	}
	supplies := tx.accounts["606300"]
	if supplies.IsBalanceSheet {
		t.Fatal("class 6 account must not be a balance sheet account")
	}
	if supplies.SectionID == nil || *supplies.SectionID != tx.sections["606"] {
		t.Fatalf("section link wrong: %+v", supplies)
	}
	bank := tx.accounts["512000"]
	if !bank.IsBalanceSheet {
		t.Fatal("class 5 account must stay a balance sheet account")
	}
}

func TestImportChartOfAccountsIsIdempotent(t *testing.T) {
	csvData := "NO_CPT_COMPTABLE_GENERAL;LIB_CPT_COMPTABLE_GENERAL\n606300;Fournitures\n"
	path := writeFile(t, "pcg.csv", []byte(csvData))

	tx := newFakeTxStore()
	im := NewImporter(&fakeStore{tx: tx}, slog.Default())

	for i := 0; i < 2; i++ {
		if _, err := im.ImportChartOfAccounts(context.Background(), path); err != nil {
			t.Fatalf("import #%d: %v", i+1, err)
		}
	}
	if len(tx.accounts) != 1 {
		t.Fatalf("re-import must converge, got %d accounts", len(tx.accounts))
	}
}

func TestImportJournalsFlagsOpeningBalance(t *testing.T) {
	csvData := "ID_JOURNAL_COMPTABLE;CODE_JOURNAL_COMPTABLE;LIB_RED_JOURNAL_COMPTABLE;LIB_JOURNAL_COMPTABLE;CODE_SOCIETE\n" +
		"1;RAN;RAN;Report a nouveau;N/A\n" +
		"2;BNK;BNK;Banque;001\n" +
		"3;;X;Sans code;\n"
	path := writeFile(t, "journals.csv", []byte(csvData))

	tx := newFakeTxStore()
	im := NewImporter(&fakeStore{tx: tx}, slog.Default())

	res, err := im.ImportJournals(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !tx.journals["1"].IsOpeningBalance {
		t.Fatal("RAN journal must be flagged as opening balance")
	}
	if tx.journals["1"].CompanyCode != nil {
		t.Fatal("N/A company code must be stored as null")
	}
	if tx.journals["2"].CompanyCode == nil || *tx.journals["2"].CompanyCode != "001" {
		t.Fatalf("company code lost: %+v", tx.journals["2"])
	}
}

func TestImportFiscalYears(t *testing.T) {
	csvData := "NO_EXERCICE;LIB_EXERCICE_\n2024;\n2025;EXERCICE COURANT\nabc;Bad\n"
	path := writeFile(t, "years.csv", []byte(csvData))

	tx := newFakeTxStore()
	im := NewImporter(&fakeStore{tx: tx}, slog.Default())
	im.WithNow(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })

	res, err := im.ImportFiscalYears(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	y2024 := tx.years[2024]
	if !y2024.IsClosed || y2024.IsCurrent {
		t.Fatalf("2024 must be closed and not current: %+v", y2024)
	}
	if y2024.Name != "EXERCICE 2024" {
		t.Fatalf("missing default name: %q", y2024.Name)
	}
	y2025 := tx.years[2025]
	if y2025.IsClosed || !y2025.IsCurrent {
		t.Fatalf("2025 must be current and open: %+v", y2025)
	}
	if !y2025.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %v", y2025.StartDate)
	}
}

func TestImportAccountingTypes(t *testing.T) {
	csvData := "CODE_TYPE_COMPTABILITE;LIB_RED_DU_TYPE_COMPTABILITE;LIB_TYPE_COMPTABILITE;NATURE_DE_COMPTABILITE\n" +
		"GEN;NULL;NULL;G\n" +
		"???;x;y;z\n"
	path := writeFile(t, "types.csv", []byte(csvData))

	tx := newFakeTxStore()
	im := NewImporter(&fakeStore{tx: tx}, slog.Default())

	res, err := im.ImportAccountingTypes(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	typ := tx.types["GEN"]
	if typ.ShortName != "GEN" || typ.FullName != "GEN" {
		t.Fatalf("NULL literals must fall back to code: %+v", typ)
	}
}

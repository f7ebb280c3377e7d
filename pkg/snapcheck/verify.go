package snapcheck

import "fmt"

// VerifyRows asserts got equals want element-for-element. It reports the
// most specific mismatch it can: a wrong length is a count mismatch, a row
// whose values appear elsewhere in want is an order mismatch, anything else
// is a content mismatch.
func VerifyRows(phase Phase, got, want []Row) error {
	if len(got) != len(want) {
		return &MismatchError{
			Phase: phase,
			Kind:  MismatchCount,
			Index: -1,
			Want:  len(want),
			Got:   len(got),
		}
	}

	for i := range want {
		if got[i] == want[i] {
			continue
		}

		kind := MismatchContent
		for j := range want {
			if j != i && got[i] == want[j] {
				kind = MismatchOrder
				break
			}
		}
		return &MismatchError{
			Phase: phase,
			Kind:  kind,
			Index: i,
			Want:  want[i],
			Got:   got[i],
		}
	}
	return nil
}

// VerifyCatalog asserts the table catalog is non-empty and contains the
// seeded table.
func VerifyCatalog(tables []string) error {
	if len(tables) == 0 {
		return ErrEmptyCatalog
	}
	for _, name := range tables {
		if name == SeedTable {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not in %v", ErrMissingTable, SeedTable, tables)
}

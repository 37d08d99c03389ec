// Package mocks provides function-field mocks of the service interfaces
// for handler and middleware tests.
//
// Each mock method calls its Fn field when set and otherwise returns the
// mock's default values, so a test only spells out the behaviour it cares
// about:
//
//	ledger := &mocks.MockLedgerService{
//	    GetNextReviewNoFn: func(ctx context.Context, unitID int64) (int, error) {
//	        return 3, nil
//	    },
//	}
//
// Methods without a default return zero values and Err.
package mocks

// Package mocks provides shared mock implementations of the service and
// assist interfaces for handler and wiring tests.
//
// Each mock has a function field per interface method. A nil field falls
// back to the mock's default values, and every call is recorded so tests
// can assert on the arguments:
//
//	boards := &mocks.MockBoardService{
//	    GetTaskFn: func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	        return nil, service.ErrTaskNotFound
//	    },
//	}
//	handler := api.NewTaskHandler(boards, logger)
package mocks

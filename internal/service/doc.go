// Package service contains the board use cases. It orchestrates domain
// objects and the stores defined in internal/store to fulfil the features
// exposed over HTTP.
//
// Key components:
//
// 1. BoardService:
//   - Adds, edits, moves, nests and deletes tasks
//   - Applies transactional boundaries when an operation touches several rows
//   - Imports and exports the whole board
//
// 2. AssistService:
//   - Asks a language model to categorize, break down or expand tasks
//   - Turns model replies into subtasks on the board
//   - Raises background job requests through the event emitter
//
// 3. Error Handling:
//   - Translates store errors to service sentinels
//   - Wraps unexpected failures in ServiceError with the failing operation
//
// The service layer depends on domain entities and store interfaces, never on
// specific infrastructure implementations.
package service

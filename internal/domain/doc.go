// Package domain contains the core board entities: tasks, the four Eisenhower
// lanes, the kanban statuses a task moves through, and the nested board view
// built from a flat task list. It has no knowledge of storage or transport.
package domain

package rowdec

// Query represents the sql statement used by an Executor (or Executor.Rows etc.)
//
// it is passed to the driver as is - placeholders must be in the form the driver expects
type Query string

// AddClause is a sql clause that can be added when using Executor.Rows, Executor.FirstRow etc.
type AddClause string

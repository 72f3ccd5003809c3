package rowdec

// Backend identifies which database engine produced a QueryResult
type Backend int

const (
	BackendMySQL Backend = iota
	BackendPostgres
	BackendSQLite
	BackendMock
)

func (b Backend) String() string {
	switch b {
	case BackendMySQL:
		return "mysql"
	case BackendPostgres:
		return "postgres"
	case BackendSQLite:
		return "sqlite"
	case BackendMock:
		return "mock"
	}
	return "unknown"
}

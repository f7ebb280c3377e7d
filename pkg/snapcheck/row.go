package snapcheck

// Row is one record of the seeded table. The id is assigned by the store on
// insert, starting at 1; id and name together are the row's full comparable
// state.
type Row struct {
	ID   int64
	Name string
}

// SeedTable is the name of the table created by the seeding batch.
const SeedTable = "test"

// seedBatch creates the table and inserts the two fixed rows in one batch.
const seedBatch = `
create table test (id integer primary key, name text);
insert into test (name) values ('hello');
insert into test (name) values ('world');
`

// selectAll is the full unfiltered scan of the seeded table. Result order
// follows insertion order.
const selectAll = `select id, name from test`

// catalogQuery lists table names from the store's reserved system catalog.
const catalogQuery = `select name from sqlite_master where type = 'table' order by name`

// SeedRows returns the dataset the seeding batch produces.
func SeedRows() []Row {
	return []Row{
		{ID: 1, Name: "hello"},
		{ID: 2, Name: "world"},
	}
}

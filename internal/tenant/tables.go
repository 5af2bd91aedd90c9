package tenant

// tableDef pairs a tenant-schema table with its creation statement. The
// statements use unqualified names so they land in whatever schema the
// dedicated connection's search_path points at, and IF NOT EXISTS so a
// re-invoked provisioner skips work already committed by an earlier attempt.
//
// No inter-table foreign keys are declared: every tenant table stands alone,
// independent of the shared registry and of the other tenant tables, so they
// can be created (and re-created) in any order.
type tableDef struct {
	Name string
	DDL  string
}

// tenantTables is the canonical fixed table set. Provisioning is complete
// only when every one of these exists in the tenant schema.
var tenantTables = []tableDef{
	{
		Name: "admission_batches",
		DDL: `CREATE TABLE IF NOT EXISTS admission_batches (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			is_active BOOLEAN DEFAULT FALSE,
			description VARCHAR(500),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "departments",
		DDL: `CREATE TABLE IF NOT EXISTS departments (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			code VARCHAR(50) UNIQUE,
			parent_id INTEGER,
			"order" INTEGER DEFAULT 0,
			leader VARCHAR(50),
			phone VARCHAR(20),
			email VARCHAR(100),
			status BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "dormitories",
		DDL: `CREATE TABLE IF NOT EXISTS dormitories (
			id SERIAL PRIMARY KEY,
			building VARCHAR(50) NOT NULL,
			room_number VARCHAR(20) NOT NULL,
			capacity INTEGER DEFAULT 4,
			current_count INTEGER DEFAULT 0,
			status BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "students",
		DDL: `CREATE TABLE IF NOT EXISTS students (
			id_card VARCHAR(18) PRIMARY KEY,
			student_id VARCHAR(50) UNIQUE,
			name VARCHAR(50) NOT NULL,
			gender VARCHAR(10),
			birth_date DATE,
			admission_batch_id INTEGER,
			department_id INTEGER,
			dormitory_id INTEGER,
			phone VARCHAR(20),
			email VARCHAR(100),
			address VARCHAR(200),
			status BOOLEAN DEFAULT TRUE,
			ext_field1 VARCHAR(200),
			ext_field2 VARCHAR(200),
			ext_field3 VARCHAR(200),
			ext_field4 VARCHAR(200),
			ext_field5 VARCHAR(200),
			ext_field6 VARCHAR(200),
			ext_field7 VARCHAR(200),
			ext_field8 VARCHAR(200),
			ext_field9 VARCHAR(200),
			ext_field10 VARCHAR(200),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "staff",
		DDL: `CREATE TABLE IF NOT EXISTS staff (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password VARCHAR(100) NOT NULL,
			name VARCHAR(50) NOT NULL,
			gender VARCHAR(10),
			phone VARCHAR(20),
			email VARCHAR(100),
			department_id INTEGER,
			position VARCHAR(50),
			status BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "registration_processes",
		DDL: `CREATE TABLE IF NOT EXISTS registration_processes (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			"order" INTEGER NOT NULL,
			description VARCHAR(500),
			is_required BOOLEAN DEFAULT TRUE,
			status BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "info_entry_processes",
		DDL: `CREATE TABLE IF NOT EXISTS info_entry_processes (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			"order" INTEGER NOT NULL,
			description VARCHAR(500),
			is_required BOOLEAN DEFAULT TRUE,
			status BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "registration_info",
		DDL: `CREATE TABLE IF NOT EXISTS registration_info (
			id SERIAL PRIMARY KEY,
			student_id VARCHAR(50) NOT NULL,
			process_id INTEGER NOT NULL,
			status BOOLEAN DEFAULT FALSE,
			completed_at TIMESTAMP WITH TIME ZONE,
			operator_id INTEGER,
			remarks TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Name: "field_mappings",
		DDL: `CREATE TABLE IF NOT EXISTS field_mappings (
			id SERIAL PRIMARY KEY,
			field_name VARCHAR(50) NOT NULL,
			display_name VARCHAR(50) NOT NULL,
			is_required BOOLEAN DEFAULT FALSE,
			"order" INTEGER DEFAULT 0,
			status BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// TableCount returns the size of the canonical table set
func TableCount() int {
	return len(tenantTables)
}

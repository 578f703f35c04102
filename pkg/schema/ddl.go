package schema

import (
	"fmt"
	"strings"
)

// CreateSQL renders a CREATE TABLE statement.
func (t Table) CreateSQL() string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}

	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		lines = append(lines, "    "+c.definition(len(pk) == 1))
	}
	if len(pk) > 1 {
		lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", t.Name, strings.Join(lines, ",\n"))
}

// DropSQL renders a DROP TABLE statement.
func (t Table) DropSQL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", t.Name)
}

// AddColumnSQL renders an ALTER TABLE ... ADD COLUMN statement.
func AddColumnSQL(table string, c Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, c.definition(false))
}

// DropColumnSQL renders an ALTER TABLE ... DROP COLUMN statement.
func DropColumnSQL(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, column)
}

func (c Column) definition(inlinePK bool) string {
	def := c.Name + " " + c.Type
	if inlinePK && c.PrimaryKey {
		def += " PRIMARY KEY"
	}
	if !c.Nullable && !c.PrimaryKey {
		def += " NOT NULL"
	}
	return def
}

package schema

import (
	"fmt"
	"strings"
)

// CreateStatements renders idempotent PostgreSQL DDL for the whole schema:
// the status enum, every table in foreign-key order and the unique index.
func CreateStatements() []string {
	out := []string{createEnum(InvoiceStatus)}
	for _, r := range Relations() {
		out = append(out, createTable(r))
	}
	out = append(out, createUniqueIndex(UsersEmailUnique))
	return out
}

// DropStatements renders the reverse of CreateStatements.
func DropStatements() []string {
	rels := Relations()
	out := make([]string, 0, len(rels)+1)
	for i := len(rels) - 1; i >= 0; i-- {
		out = append(out, fmt.Sprintf("DROP TABLE IF EXISTS %s", rels[i].TableName()))
	}
	return append(out, fmt.Sprintf("DROP TYPE IF EXISTS %s", InvoiceStatus.Name))
}

// CREATE TYPE has no IF NOT EXISTS form, so the statement swallows
// duplicate_object instead.
func createEnum(e Enum) string {
	labels := make([]string, len(e.Values))
	for i, v := range e.Values {
		labels[i] = "'" + v + "'"
	}
	return fmt.Sprintf(`DO $$ BEGIN
	CREATE TYPE %s AS ENUM (%s);
EXCEPTION
	WHEN duplicate_object THEN NULL;
END $$`, e.Name, strings.Join(labels, ", "))
}

func createTable(r Relation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", r.TableName())
	cols := r.Columns()
	for i, c := range cols {
		b.WriteString("\t" + columnDef(c))
		if i < len(cols)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

func columnDef(c Column) string {
	parts := []string{c.Name, c.Type}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if c.NotNull && !c.PrimaryKey {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != "" {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	if c.References != nil {
		parts = append(parts, fmt.Sprintf("REFERENCES %s(%s)", c.References.Table, c.References.Name))
	}
	return strings.Join(parts, " ")
}

func createUniqueIndex(ix UniqueIndex) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
		ix.Name, ix.Table, strings.Join(ix.Columns, ", "))
}

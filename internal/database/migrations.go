package database

// RunMigrations creates the documents table and the expression indexes used
// by the insight and form lookups.
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&Document{}); err != nil {
		return err
	}

	// Latest sale per property
	if err := d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_property_id
		ON documents(kind, json_extract(body, '$.propertyId'));
	`).Error; err != nil {
		return err
	}

	// Neighborhood lookup by name
	return d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_documents_name
		ON documents(kind, json_extract(body, '$.name'));
	`).Error
}

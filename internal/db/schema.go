package db

// SchemaSQL contains the database schema initialization SQL. Profiles are
// stored one record per profile with the export document embedded as a
// flexible object; macros and steps never get their own tables.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS profile SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS name ON profile TYPE string;
    DEFINE FIELD IF NOT EXISTS doc ON profile TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created ON profile TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON profile TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS profile_name ON profile FIELDS name;
`

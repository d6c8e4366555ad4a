package sqlite

import "github.com/louisbranch/loreworld/internal/platform/storage/sqlitemigrate"

// Migrations is the ordered schema history. Each entry is reversible; the
// migrate command rolls back the most recent record.
var Migrations = []sqlitemigrate.Migration{
	{
		Name: "001_world_graph",
		Up: `
CREATE TABLE worlds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE writing_styles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    world_id INTEGER NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
    name TEXT NOT NULL DEFAULT '',
    tone TEXT NOT NULL DEFAULT '',
    point_of_view TEXT NOT NULL DEFAULT '',
    pacing TEXT NOT NULL DEFAULT '',
    guidance TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_writing_styles_world_id ON writing_styles(world_id);

CREATE TABLE areas (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    world_id INTEGER NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    temperature REAL NOT NULL DEFAULT 20,
    exits TEXT NOT NULL DEFAULT '{}',
    triggers TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX idx_areas_world_id ON areas(world_id);

CREATE TABLE characters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    world_id INTEGER NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    species TEXT NOT NULL DEFAULT '',
    gender TEXT NOT NULL DEFAULT '',
    age INTEGER NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    backstory TEXT NOT NULL DEFAULT '',
    memory TEXT NOT NULL DEFAULT '[]',
    likes TEXT NOT NULL DEFAULT '[]',
    dislikes TEXT NOT NULL DEFAULT '[]',
    interests TEXT NOT NULL DEFAULT '[]',
    beliefs TEXT NOT NULL DEFAULT '[]',
    internal_conflict TEXT NOT NULL DEFAULT '',
    nutrition REAL NOT NULL DEFAULT 100 CHECK (nutrition >= 0 AND nutrition <= 100),
    hydration REAL NOT NULL DEFAULT 100 CHECK (hydration >= 0 AND hydration <= 100),
    tiredness REAL NOT NULL DEFAULT 0 CHECK (tiredness >= 0 AND tiredness <= 100),
    alertness REAL NOT NULL DEFAULT 100 CHECK (alertness >= 0 AND alertness <= 100),
    damage TEXT NOT NULL DEFAULT '[]',
    current_area_id INTEGER REFERENCES areas(id) ON DELETE SET NULL,
    owner_id TEXT,
    character_class TEXT NOT NULL DEFAULT 'minor' CHECK (character_class IN ('story', 'minor'))
);
CREATE INDEX idx_characters_world_id ON characters(world_id);
CREATE INDEX idx_characters_current_area_id ON characters(current_area_id);
CREATE INDEX idx_characters_owner_id ON characters(owner_id);
CREATE INDEX idx_characters_class ON characters(character_class);

CREATE TABLE items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    world_id INTEGER NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    properties TEXT NOT NULL DEFAULT '{}',
    current_area_id INTEGER REFERENCES areas(id) ON DELETE SET NULL,
    held_by_character_id INTEGER REFERENCES characters(id) ON DELETE SET NULL,
    held_location TEXT
);
CREATE INDEX idx_items_world_id ON items(world_id);
CREATE INDEX idx_items_current_area_id ON items(current_area_id);
CREATE INDEX idx_items_held_by_character_id ON items(held_by_character_id);
`,
		Down: `
DROP TABLE items;
DROP TABLE characters;
DROP TABLE areas;
DROP TABLE writing_styles;
DROP TABLE worlds;
`,
	},
	{
		Name: "002_prose_shelf",
		Up: `
CREATE TABLE series (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    world_id INTEGER NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    premise TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_series_world_id ON series(world_id);

CREATE TABLE books (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    series_id INTEGER NOT NULL REFERENCES series(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'planned' CHECK (status IN ('planned', 'drafting', 'complete'))
);
CREATE INDEX idx_books_series_id ON books(series_id);

CREATE TABLE chapters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'outlined' CHECK (status IN ('outlined', 'drafted', 'revised')),
    prose TEXT NOT NULL DEFAULT '',
    raw_events TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX idx_chapters_book_id ON chapters(book_id);
`,
		Down: `
DROP TABLE chapters;
DROP TABLE books;
DROP TABLE series;
`,
	},
}

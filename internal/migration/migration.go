// Package migration holds the SQL schema for the local database.
package migration

// Create builds all tables for a fresh database. Statements use IF NOT
// EXISTS so re-running against an existing database is harmless.
const Create = `
CREATE TABLE IF NOT EXISTS User (
  name TEXT PRIMARY KEY,
  token TEXT NOT NULL DEFAULT '',
  last_synced DATETIME
);

CREATE TABLE IF NOT EXISTS Listen (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  artist TEXT NOT NULL,
  artist_mbid TEXT NOT NULL DEFAULT '',
  album TEXT NOT NULL,
  track_name TEXT NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  date TEXT NOT NULL,
  recording_mbid TEXT NOT NULL DEFAULT '',
  release_mbid TEXT NOT NULL DEFAULT '',
  origin TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (user) REFERENCES User(name)
);

CREATE UNIQUE INDEX IF NOT EXISTS ListenNaturalKey
  ON Listen (user, date, track_name, artist);

CREATE TABLE IF NOT EXISTS Staging (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  artist TEXT NOT NULL,
  artist_mbid TEXT NOT NULL DEFAULT '',
  album TEXT NOT NULL,
  track_name TEXT NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  date TEXT NOT NULL,
  recording_mbid TEXT NOT NULL DEFAULT '',
  release_mbid TEXT NOT NULL DEFAULT '',
  origin TEXT NOT NULL DEFAULT '',
  FOREIGN KEY (user) REFERENCES User(name)
);

CREATE TABLE IF NOT EXISTS Liked (
  user TEXT NOT NULL,
  recording_mbid TEXT NOT NULL,
  PRIMARY KEY (user, recording_mbid),
  FOREIGN KEY (user) REFERENCES User(name)
);

CREATE TABLE IF NOT EXISTS GenreCache (
  entity TEXT NOT NULL,
  name TEXT NOT NULL,
  genres TEXT NOT NULL DEFAULT '',
  updated DATETIME,
  PRIMARY KEY (entity, name)
);

CREATE TABLE IF NOT EXISTS RecordingCache (
  artist TEXT NOT NULL,
  track_name TEXT NOT NULL,
  recording_mbid TEXT NOT NULL DEFAULT '',
  album TEXT NOT NULL DEFAULT '',
  score REAL NOT NULL DEFAULT 0,
  updated DATETIME,
  PRIMARY KEY (artist, track_name)
);

CREATE TABLE IF NOT EXISTS Report (
  user TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  kinds TEXT NOT NULL,
  params TEXT NOT NULL DEFAULT '',
  sent DATETIME,
  PRIMARY KEY (user, name),
  FOREIGN KEY (user) REFERENCES User(name)
);
`

package sqlite

import (
	"log"

	"github.com/jmoiron/sqlx"
)

func dbInitSchema(d *sqlx.DB) error {
	schema := []string{
		// This is needed to improve concurrent reads and writes.
		`PRAGMA journal_mode = WAL;`,
		// Without this foreign key constraints won't be enforced and cascade deletes won't happen.
		`PRAGMA foreign_keys = ON;`,

		`CREATE TABLE IF NOT EXISTS users (
id TEXT NOT NULL PRIMARY KEY,
username TEXT NOT NULL,
email TEXT NOT NULL DEFAULT '',
displayname TEXT NOT NULL DEFAULT '',
secret TEXT NOT NULL,
passwordhash TEXT NOT NULL,
isadmin BOOLEAN NOT NULL DEFAULT 0,
canshare BOOLEAN NOT NULL DEFAULT 0,
created DATETIME NOT NULL,
lastlogin DATETIME NOT NULL);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS users_name_idx ON users (username);`,

		`CREATE TABLE IF NOT EXISTS artists (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
sortname TEXT NOT NULL,
imagepath TEXT NOT NULL DEFAULT '',
albumcount INTEGER NOT NULL DEFAULT 0,
created DATETIME NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS artists_name_idx ON artists (sortname);`,

		`CREATE TABLE IF NOT EXISTS albums (
id TEXT NOT NULL PRIMARY KEY,
artistid TEXT NOT NULL,
artist TEXT NOT NULL,
name TEXT NOT NULL,
sortname TEXT NOT NULL,
genre TEXT NOT NULL DEFAULT '',
year INTEGER NOT NULL DEFAULT 0,
coverpath TEXT NOT NULL DEFAULT '',
songcount INTEGER NOT NULL DEFAULT 0,
duration INTEGER NOT NULL DEFAULT 0,
playcount INTEGER NOT NULL DEFAULT 0,
created DATETIME NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS albums_artist_idx ON albums (artistid);`,
		`CREATE INDEX IF NOT EXISTS albums_name_idx ON albums (sortname);`,

		`CREATE TABLE IF NOT EXISTS songs (
id TEXT NOT NULL PRIMARY KEY,
albumid TEXT NOT NULL,
artistid TEXT NOT NULL,
title TEXT NOT NULL,
album TEXT NOT NULL DEFAULT '',
artist TEXT NOT NULL DEFAULT '',
track INTEGER NOT NULL DEFAULT 0,
disc INTEGER NOT NULL DEFAULT 0,
genre TEXT NOT NULL DEFAULT '',
year INTEGER NOT NULL DEFAULT 0,
duration INTEGER NOT NULL DEFAULT 0,
bitrate INTEGER NOT NULL DEFAULT 0,
path TEXT NOT NULL,
suffix TEXT NOT NULL DEFAULT '',
contenttype TEXT NOT NULL DEFAULT '',
size INTEGER NOT NULL DEFAULT 0,
playcount INTEGER NOT NULL DEFAULT 0,
lastplayed DATETIME NOT NULL,
created DATETIME NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS songs_album_idx ON songs (albumid);`,
		`CREATE INDEX IF NOT EXISTS songs_genre_idx ON songs (genre);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS songs_path_idx ON songs (path);`,

		`CREATE TABLE IF NOT EXISTS annotations (
userid TEXT NOT NULL,
itemid TEXT NOT NULL,
starred DATETIME NOT NULL,
rating INTEGER NOT NULL DEFAULT 0,
PRIMARY KEY (userid, itemid));`,

		`CREATE TABLE IF NOT EXISTS playlists (
id TEXT NOT NULL PRIMARY KEY,
ownerid TEXT NOT NULL,
owner TEXT NOT NULL DEFAULT '',
name TEXT NOT NULL,
comment TEXT NOT NULL DEFAULT '',
public BOOLEAN NOT NULL DEFAULT 0,
created DATETIME NOT NULL,
changed DATETIME NOT NULL);`,

		`CREATE TABLE IF NOT EXISTS playlist_songs (
playlistid TEXT NOT NULL,
songid TEXT NOT NULL,
songorder INTEGER NOT NULL,
PRIMARY KEY (playlistid, songorder),
FOREIGN KEY (playlistid) REFERENCES playlists(id) ON DELETE CASCADE);`,

		`CREATE TABLE IF NOT EXISTS bookmarks (
userid TEXT NOT NULL,
songid TEXT NOT NULL,
position INTEGER NOT NULL DEFAULT 0,
comment TEXT NOT NULL DEFAULT '',
created DATETIME NOT NULL,
changed DATETIME NOT NULL,
PRIMARY KEY (userid, songid));`,

		`CREATE TABLE IF NOT EXISTS playqueues (
userid TEXT NOT NULL PRIMARY KEY,
current TEXT NOT NULL DEFAULT '',
position INTEGER NOT NULL DEFAULT 0,
changedby TEXT NOT NULL DEFAULT '',
changed DATETIME NOT NULL);`,

		`CREATE TABLE IF NOT EXISTS playqueue_songs (
userid TEXT NOT NULL,
songid TEXT NOT NULL,
songorder INTEGER NOT NULL,
PRIMARY KEY (userid, songorder));`,

		`CREATE TABLE IF NOT EXISTS shares (
id TEXT NOT NULL PRIMARY KEY,
ownerid TEXT NOT NULL,
description TEXT NOT NULL DEFAULT '',
created DATETIME NOT NULL,
expires DATETIME NOT NULL,
lastvisited DATETIME NOT NULL,
visitcount INTEGER NOT NULL DEFAULT 0);`,

		`CREATE TABLE IF NOT EXISTS share_items (
shareid TEXT NOT NULL,
itemid TEXT NOT NULL,
itemorder INTEGER NOT NULL,
PRIMARY KEY (shareid, itemorder),
FOREIGN KEY (shareid) REFERENCES shares(id) ON DELETE CASCADE);`,

		`CREATE TABLE IF NOT EXISTS radiostations (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL,
streamurl TEXT NOT NULL,
homepageurl TEXT NOT NULL DEFAULT '',
created DATETIME NOT NULL);`,
	}

	for _, query := range schema {
		if _, err := d.Exec(query); err != nil {
			log.Printf("dbInitSchema error: %s\n", err)
			return err
		}
	}
	return nil
}

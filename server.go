package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/syslog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/Huuberrt/melodee-sub000/artwork"
	"github.com/Huuberrt/melodee-sub000/auth"
	"github.com/Huuberrt/melodee-sub000/cache"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/database/sqlite"
	"github.com/Huuberrt/melodee-sub000/dynamicplaylist"
	"github.com/Huuberrt/melodee-sub000/imageresize"
	"github.com/Huuberrt/melodee-sub000/scanner"
	"github.com/Huuberrt/melodee-sub000/search"
	"github.com/Huuberrt/melodee-sub000/subsonic"
)

type folderConfig struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// loadConfig merges the yaml config file with command line overrides.
// Defaults live here, the file overrides them, flags override the file.
func loadConfig() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("listen.port", 4533)
	v.SetDefault("server.name", "melodee")
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("database.file", "melodee.db")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("artwork.jpegquality", 85)
	v.SetDefault("logfile", "stdout")

	pflag.String("config", "", "path of config file")
	pflag.Int("port", 0, "listen port")
	pflag.String("dbfile", "", "sqlite database file")
	pflag.String("logfile", "", "logfile path, 'syslog', 'stdout' or 'none'")
	pflag.Parse()

	if err := v.BindPFlag("listen.port", pflag.Lookup("port")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("database.file", pflag.Lookup("dbfile")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("logfile", pflag.Lookup("logfile")); err != nil {
		return nil, err
	}

	if configFile, _ := pflag.CommandLine.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("melodee")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/melodee")
	}
	if err := v.ReadInConfig(); err != nil {
		// running on defaults and flags alone is fine
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return v, nil
}

func setLogOutput(target string) {
	switch target {
	case "syslog":
		logw, err := syslog.New(syslog.LOG_NOTICE, "melodee")
		if err != nil {
			log.Fatalf("error opening syslog: %v", err)
		}
		log.SetOutput(logw)
	case "none":
		log.SetOutput(io.Discard)
	case "", "stdout":
	default:
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening logfile: %v", err)
		}
		log.SetOutput(f)
	}
}

// artworkBuckets reads named artwork size buckets from config, e.g.
// artwork.buckets: {small: 64, medium: 256}. Bad entries are skipped.
func artworkBuckets(config *viper.Viper) map[string]int {
	buckets := make(map[string]int)
	for name, value := range config.GetStringMapString("artwork.buckets") {
		px, err := strconv.Atoi(value)
		if err != nil || px <= 0 {
			log.Printf("ignoring artwork bucket %q: bad size %q", name, value)
			continue
		}
		buckets[name] = px
	}
	return buckets
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setLogOutput(config.GetString("logfile"))

	repo, err := sqlite.New(&sqlite.ConfigFile{
		Filename: config.GetString("database.file"),
	})
	if err != nil {
		log.Fatalf("sqlite.New: %v", err)
	}

	seedAdminUser(repo, config.GetString("admin.username"), config.GetString("admin.password"))

	var folderConfigs []folderConfig
	if err := config.UnmarshalKey("music.folders", &folderConfigs); err != nil {
		log.Fatalf("config: music.folders: %v", err)
	}
	folders := make([]scanner.Folder, 0, len(folderConfigs))
	for i, fc := range folderConfigs {
		folders = append(folders, scanner.Folder{ID: i + 1, Name: fc.Name, Path: fc.Path})
	}

	index, err := search.New()
	if err != nil {
		log.Fatalf("search.New: %v", err)
	}

	scan := scanner.New(&scanner.Options{
		Folders: folders,
		Repo:    repo,
		Index:   index,
	})

	resizer := imageresize.New(imageresize.Options{
		JPEGQuality: config.GetInt("artwork.jpegquality"),
	})

	cacheTTL := config.GetDuration("cache.ttl")
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	playlists := dynamicplaylist.New(dynamicplaylist.Options{
		Repo: repo,
		Dir:  config.GetString("dynamicplaylists.dir"),
	})

	art := artwork.New(artwork.Options{
		Repo:               repo,
		Resizer:            resizer,
		Cache:              cache.New(cacheTTL),
		SizeBuckets:        artworkBuckets(config),
		DynamicPlaylistDir: config.GetString("dynamicplaylists.dir"),
		AvatarDir:          config.GetString("avatars.dir"),
	})

	r := mux.NewRouter()
	api := subsonic.New(&subsonic.Options{
		Repo:          repo,
		Authenticator: auth.New(repo),
		Artwork:       art,
		Playlists:     playlists,
		Scanner:       scan,
		Index:         index,
		ServerName:    config.GetString("server.name"),
		ServerVersion: config.GetString("server.version"),
		BaseURL:       config.GetString("server.baseurl"),
		InviteCode:    config.GetString("invitecode"),
	})
	api.RegisterHandlers(r)

	log.Printf("scanning %d music folders", len(folders))
	scan.Start(context.Background())

	addr := fmt.Sprintf(":%d", config.GetInt("listen.port"))
	log.Printf("serving on %s", addr)
	log.Fatal(http.ListenAndServe(addr, HttpLog(r)))
}

// seedAdminUser creates the configured admin account on first start so a
// fresh install has a login. Existing accounts are left alone.
func seedAdminUser(repo database.Repository, username, password string) {
	if username == "" || password == "" {
		return
	}
	ctx := context.Background()
	if _, err := repo.GetUser(ctx, username); err == nil {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("seeding admin: %v", err)
	}
	err = repo.CreateUser(ctx, &model.User{
		ID:           uuid.New(),
		Username:     username,
		Secret:       password,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CanShare:     true,
		Created:      time.Now().UTC(),
	})
	if err != nil {
		log.Fatalf("seeding admin: %v", err)
	}
	log.Printf("created admin account %q", username)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	reliosdk "github.com/relio-ai/relio-sdk-go"
	"github.com/relio-ai/relio-sdk-go/store"
)

const envPrefix = "RELIO"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relio",
		Short: "Relationship dynamics engine CLI",
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newContactsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("store.dir", "./data")
	viper.SetDefault("store.redis_prefix", "relio")
	viper.SetDefault("llm.endpoint", "https://api.openai.com")
	viper.SetDefault("llm.model", "gpt-4o-mini")

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}

// intimacyConfigFromViper starts from the defaults and applies any
// configured overrides. Validation happens inside NewSystem.
func intimacyConfigFromViper() reliosdk.IntimacyConfig {
	cfg := reliosdk.DefaultIntimacyConfig()
	if viper.IsSet("intimacy.decay_7_14") {
		cfg.Decay7to14 = viper.GetFloat64("intimacy.decay_7_14")
	}
	if viper.IsSet("intimacy.decay_14_30") {
		cfg.Decay14to30 = viper.GetFloat64("intimacy.decay_14_30")
	}
	if viper.IsSet("intimacy.decay_30_90") {
		cfg.Decay30to90 = viper.GetFloat64("intimacy.decay_30_90")
	}
	if viper.IsSet("intimacy.decay_90_plus") {
		cfg.Decay90Plus = viper.GetFloat64("intimacy.decay_90_plus")
	}
	if viper.IsSet("intimacy.like_weight") {
		cfg.LikeWeight = viper.GetInt("intimacy.like_weight")
	}
	if viper.IsSet("intimacy.dislike_weight") {
		cfg.DislikeWeight = viper.GetInt("intimacy.dislike_weight")
	}
	for _, cat := range reliosdk.RelationshipCategories() {
		key := "intimacy.base." + string(cat)
		if viper.IsSet(key) {
			cfg.BaseIntimacy[cat] = viper.GetInt(key)
		}
	}
	return cfg
}

// contactStoreFromViper picks Redis when an address is configured,
// JSON files otherwise.
func contactStoreFromViper() reliosdk.ContactStore {
	addr := strings.TrimSpace(viper.GetString("store.redis_addr"))
	if addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("store.redis_password"),
			DB:       viper.GetInt("store.redis_db"),
		})
		return store.NewRedisContactStore(client, store.RedisStoreConfig{
			Prefix: viper.GetString("store.redis_prefix"),
		})
	}
	return reliosdk.NewFileContactStore(viper.GetString("store.dir"))
}

func buildSystem() (*reliosdk.System, error) {
	intimacy := intimacyConfigFromViper()
	return reliosdk.NewSystem(reliosdk.SystemConfig{
		Intimacy: &intimacy,
		Store:    contactStoreFromViper(),
		ReplyFn:  replyFuncFromViper(),
	})
}

package main

import (
	"log"
	"os"

	"github.com/idanlevi/volleyvision/pkg/api"
	"github.com/spf13/viper"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error: Could not read config file, got '%v'", err)
	}

	//first - create project's data root dir
	if _, err := os.Stat(viper.GetString("directory.root")); err != nil {
		if os.IsNotExist(err) {
			if err := os.Mkdir(viper.GetString("directory.root"), 0766); err != nil {
				log.Printf("Error Creating '%s' directory, got '%v'", viper.GetString("directory.root"), err)
			}
		}
	}

	//create missing directories from config file
	for _, dir := range viper.GetStringMapString("directory") {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				if err := os.Mkdir(dir, 0766); err != nil {
					log.Printf("Error Creating '%s' directory, got '%v'", dir, err)
				}
			}
		}
	}

	if viper.GetString("analysis.url") == "" || viper.GetString("frontend.static-files-path") == "" {
		log.Fatalf("Error: Missing critical configurations")
	}

	r := api.SetRouter()
	if err := r.Run(":" + viper.GetString("http.port")); err != nil {
		log.Fatalf("Error: Got '%v'", err)
	}
}

package main

import (
	"context"
	"flag"
	"time"

	"github.com/manjeet0006/fullstack-chat/internal/service/app"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"go.uber.org/zap"
)

func main() {
	host := flag.String("host", "localhost:9090", "chat server host:port")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	signup := flag.Bool("signup", false, "create a new account instead of logging in")
	fullName := flag.String("name", "", "full name (required with -signup)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}
	if *signup && *fullName == "" {
		log.Fatal("name is required with -signup")
	}

	api, err := app.NewClient(*host)
	if err != nil {
		log.Fatal("init api client failed", zap.Error(err))
	}

	a := app.NewApp(api)

	ctx := context.Background()
	if err := a.Run(ctx, app.Credentials{
		Email:    *email,
		Password: *password,
		FullName: *fullName,
		Signup:   *signup,
	}); err != nil {
		log.Fatal("run app failed", zap.Error(err))
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Stop(stopCtx)
}

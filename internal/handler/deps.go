package handler

import (
	"incognichat/internal/app/chat"
	"incognichat/internal/app/mail"
	"incognichat/internal/app/store"
	"incognichat/internal/configs"
)

type AppDeps struct {
	Config  *configs.AppConfig
	Store   *store.Store
	Room    *chat.Room
	Gateway *chat.Gateway
	Mailer  mail.Mailer
}

package app

import (
	"fmt"
	"io"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中サーバーの/healthを叩いて終了する。
	// distrolessイメージにはcurlが無いため、Dockerヘルスチェックで使う。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示して終了する。
	CommandHelp Command = "help"
)

var commands = map[string]Command{
	"serve":       CommandServe,
	"migrate":     CommandMigrate,
	"healthcheck": CommandHealthcheck,
	"help":        CommandHelp,
	"-h":          CommandHelp,
	"--help":      CommandHelp,
}

// ParseCommand は先頭の引数からサブコマンドを決定する。
// 引数なし、または未知のサブコマンドはCommandServeとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := commands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}

const usage = `Usage: taskman [command]

Commands:
  serve        start the HTTP API server (default)
  migrate      apply pending database migrations and exit
  healthcheck  probe http://localhost:$SERVER_PORT/health and exit
  help         show this message
`

// writeUsage は使い方をwに出力する。
func writeUsage(w io.Writer) error {
	if _, err := fmt.Fprint(w, usage); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}
	return nil
}

package app

// Command はCLIのサブコマンドを表す。
type Command string

const (
	// CommandLogin は資格情報でログインしてセッションを保存する。
	CommandLogin Command = "login"
	// CommandLogout はサーバー側セッションの無効化を試み、ローカルセッションを破棄する。
	CommandLogout Command = "logout"
	// CommandMe は現在のユーザーのプロフィールを表示する。
	CommandMe Command = "me"
	// CommandStatus はセッション状態とトークン有効期限を表示する。
	CommandStatus Command = "status"
	// CommandOpen は指定経路への遷移可否をガードで判定して表示する。
	CommandOpen Command = "open"
	// CommandVersion はバージョンを表示する。
	CommandVersion Command = "version"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// ParseCommand はコマンドライン引数からサブコマンドと残余引数を解析する。
// 引数が空またはサポート外のコマンドの場合はCommandHelpを返す。
func ParseCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CommandHelp, nil
	}

	switch args[0] {
	case "login":
		return CommandLogin, args[1:]
	case "logout":
		return CommandLogout, args[1:]
	case "me":
		return CommandMe, args[1:]
	case "status":
		return CommandStatus, args[1:]
	case "open":
		return CommandOpen, args[1:]
	case "version":
		return CommandVersion, args[1:]
	default:
		return CommandHelp, nil
	}
}

package reply

import "fmt"

const (
	msgEmpty       = "Não consegui extrair o texto da sua mensagem. Pode enviar novamente?"
	msgGreeting    = "Olá! Como posso ajudar você hoje?"
	msgGreetingFmt = "Olá, %s! Como posso ajudar você hoje?"
	msgSmallTalk   = "Estou bem, obrigado! E você?"
	msgEchoFmt     = "Recebi sua mensagem: '%s'. No momento, só respondo a 'olá', 'tudo bem' e posso tentar 'agendar reunião'."
	msgClarify     = "Para agendar, por favor, especifique 'amanhã' ou 'hoje'."

	msgBookedFmt   = "Reunião agendada com sucesso para %s. Veja aqui: %s"
	msgUnavailable = "Não foi possível agendar. O serviço do Google Calendar não foi inicializado corretamente."
	msgForbidden   = "Não foi possível agendar. Verifique as permissões da conta de serviço no Google Calendar."
	msgNotFound    = "Não foi possível agendar. O ID do calendário especificado não foi encontrado."
	msgBookFailed  = "Não foi possível agendar a reunião devido a um erro no serviço de calendário."

	summaryFmt          = "Reunião com %s"
	summaryWithPhoneFmt = "Reunião com %s (%s)"
	descriptionFmt      = "Agendado via %s (grupo: %s). Mensagem original: \"%s\""

	startLayout = "02/01/2006 às 15:04"
)

func greeting(sender string, known bool) string {
	if !known {
		return msgGreeting
	}
	return fmt.Sprintf(msgGreetingFmt, sender)
}

func echo(message string) string {
	return fmt.Sprintf(msgEchoFmt, message)
}

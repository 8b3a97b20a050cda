package main

import "github.com/ltcare/familyhub/cmd/api/cmd"

// @title           Family Hub API
// @version         1.0
// @description     Shared family membership, invitations and calendar.
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	cmd.Execute()
}

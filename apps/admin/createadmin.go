package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// createAdmin creates an admin account; admins never sign up through the API.
func (cli *commandLine) createAdmin(name, email, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.Create(ctx, user.NewUser{
		Name:            core.CleanString(name),
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            user.RoleAdmin,
	})
	if err != nil {
		return err
	}
	fmt.Printf("admin %q created\n", usr.Email)
	return nil
}

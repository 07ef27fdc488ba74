package main

import (
	"context"
	"fmt"
)

// approveTeacher settles a pending application from the terminal,
// same effect as the admin portal's approval endpoint.
func (cli *commandLine) approveTeacher(email string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	usr, err = cli.usrSvc.ApproveTeacher(ctx, usr.ID)
	if err != nil {
		return err
	}
	fmt.Printf("teacher %q approved\n", usr.Email)
	return nil
}

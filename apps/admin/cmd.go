package main

import (
	"context"
	"flag"
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/demo"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc   user.Service
	gameSvc  gamification.Service
	demoSvcs demo.Services
	logger   core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  resetpassword -username USERNAME            - reset a user's password (prompted)")
	fmt.Println("  linkparent -parent USERNAME -student USERNAME - link a parent account to a student")
	fmt.Println("  seeddemo                                    - seed demo accounts and attendance")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	linkParentCmd := flag.NewFlagSet("linkparent", flag.ExitOnError)
	linkParentParent := linkParentCmd.String("parent", "", "The parent's username.")
	linkParentStudent := linkParentCmd.String("student", "", "The student's username.")

	switch args[1] {
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordUname, string(pwd))

	case "linkparent":
		if err := linkParentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *linkParentParent == "" || *linkParentStudent == "" {
			linkParentCmd.Usage()
			return errHelp
		}
		return cli.linkParent(ctx, *linkParentParent, *linkParentStudent)

	case "seeddemo":
		if err := cli.gameSvc.EnsureCatalog(ctx); err != nil {
			return errors.Wrap(err, "seeding achievement catalog")
		}
		return demo.Seed(ctx, cli.demoSvcs, cli.logger)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return errors.Wrapf(err, "finding user %q", uname)
	}
	if err = cli.usrSvc.SetPassword(ctx, &usr, pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	fmt.Printf("password reset for %q\n", usr.Username)
	return nil
}

func (cli *commandLine) linkParent(ctx context.Context, parentUname, studentUname string) error {
	parent, err := cli.usrSvc.GetByUsername(ctx, parentUname)
	if err != nil {
		return errors.Wrapf(err, "finding parent %q", parentUname)
	}
	student, err := cli.usrSvc.GetByUsername(ctx, studentUname)
	if err != nil {
		return errors.Wrapf(err, "finding student %q", studentUname)
	}
	if err = cli.usrSvc.LinkParent(ctx, parent.ID, student.ID); err != nil {
		return errors.Wrap(err, "linking parent")
	}
	fmt.Printf("linked %q to %q\n", parent.Username, student.Username)
	return nil
}

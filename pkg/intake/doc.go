/*
Package intake implements the interactive issue-report wizard.

The wizard collects reporter details, a category choice, and the category's
fixed question set, derives impact and priority through the ticket package,
renders a technician-ready summary, and on confirmation writes the ticket
file into today's partition of the ticket store. The same store is later
swept by the lifecycle job; intake never touches files it has written.

The wizard reads from an io.Reader and writes to an io.Writer, so piped
input works for tests and scripted intake:

	wizard, err := intake.New(intake.Options{
		Input:  os.Stdin,
		Output: os.Stdout,
		Store:  ticketStore,
	})
	if err != nil {
		return err
	}
	_, path, err := wizard.Run()

EOF before the wizard completes returns ErrAborted and writes nothing;
declining the final confirmation returns ErrDiscarded and writes nothing.
*/
package intake

package commands

// Short messages (one-liners)
const (
	MsgRootShort      = "Deploy and maintain agent configuration in your repositories"
	MsgInitShort      = "Deploy the configuration bundle into a repository"
	MsgUpdateShort    = "Bring deployed configuration up to the bundled version"
	MsgStatusShort    = "Show the deployed configuration against the bundled version"
	MsgGenConfigShort = "Write a starter .acforge/config.toml"
	MsgVersionShort   = "Print version information"
	MsgDocsShort      = "Display documentation topics"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun     = "Preview changes without writing anything"
	MsgFlagForce      = "Proceed past safety checks (re-init, conflicts, overwrites)"
	MsgFlagParam      = "Override a template parameter (NAME=value, repeatable)"
	MsgFlagPlain      = "Disable styled output"
	MsgFlagNoPreserve = "Skip backing up and restoring .local customizations"
)

// Long messages
const (
	MsgRootLong = `acforge deploys a templated agent configuration bundle (a .claude/
directory plus a root CLAUDE.md) into target repositories, substitutes
repository-specific parameters, and tracks what it installed so later
updates can tell template changes from user customizations.`

	MsgInitLong = `Deploy the full configuration bundle into the target repository.

Repository parameters (owner, name, URL) are detected via the gh CLI,
falling back to the git origin remote and finally the directory name.
The installation is recorded under .acforge/ so updates can be applied
incrementally later.`

	MsgInitExample = `  # Initialize the current repository
  acforge init

  # Preview without writing
  acforge init --dry-run

  # Override a detected parameter
  acforge init --param PROJECT_NAME=widgets`

	MsgUpdateLong = `Compare the deployed configuration against the bundled templates and
deploy what changed. Files you customized via .local. copies are backed
up before the write and restored byte for byte afterwards.

When a customization shadows a template that is about to change, the
update stops without writing anything; rerun with --force to proceed.`

	MsgUpdateExample = `  # Update the current repository
  acforge update

  # See what would change
  acforge update --dry-run

  # Proceed despite customization conflicts
  acforge update --force`

	MsgStatusLong = `Show whether the target is initialized, up to date, or behind the
bundled templates, including the per-file breakdown and any
customization conflicts an update would hit. Never writes.`

	MsgGenConfigLong = `Write a commented starter config to .acforge/config.toml, seeded with
the detected repository parameters. Uncomment a value to override it.`

	MsgDocsLong = `Display extended documentation. Without arguments, lists the available
topics; with a topic name, renders it.`
)

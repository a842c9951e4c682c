package revdist

import (
	borsh "github.com/near/borsh-go"

	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators, each the first 8 bytes of SHA256("dz::ix::<name>").
var (
	InstructionInitializeProgram                   = sha256First8("dz::ix::initialize_program")
	InstructionSetAdmin                            = sha256First8("dz::ix::set_admin")
	InstructionConfigureProgram                    = sha256First8("dz::ix::configure_program")
	InstructionMigrateProgramAccounts              = sha256First8("dz::ix::migrate_program_accounts")
	InstructionInitializeSwapDestination           = sha256First8("dz::ix::initialize_swap_destination")
	InstructionWithdrawSol                         = sha256First8("dz::ix::withdraw_sol")
	InstructionInitializeJournal                   = sha256First8("dz::ix::initialize_journal")
	InstructionInitializePrepaidConnection         = sha256First8("dz::ix::initialize_prepaid_connection")
	InstructionGrantPrepaidConnectionAccess        = sha256First8("dz::ix::grant_prepaid_connection_access")
	InstructionDenyPrepaidConnectionAccess         = sha256First8("dz::ix::deny_prepaid_connection_access")
	InstructionLoadPrepaidConnection               = sha256First8("dz::ix::load_prepaid_connection")
	InstructionInitializeDistribution               = sha256First8("dz::ix::initialize_distribution")
	InstructionConfigureDistributionDebt            = sha256First8("dz::ix::configure_distribution_debt")
	InstructionFinalizeDistributionDebt             = sha256First8("dz::ix::finalize_distribution_debt")
	InstructionEnableSolanaValidatorDebtWriteOff    = sha256First8("dz::ix::enable_solana_validator_debt_write_off")
	InstructionEnableErroneousSolanaValidatorDebt   = sha256First8("dz::ix::enable_erroneous_solana_validator_debt")
	InstructionConfigureDistributionRewards         = sha256First8("dz::ix::configure_distribution_rewards")
	InstructionFinalizeDistributionRewards          = sha256First8("dz::ix::finalize_distribution_rewards")
	InstructionPaySolanaValidatorDebt               = sha256First8("dz::ix::pay_solana_validator_debt")
	InstructionWriteOffSolanaValidatorDebt          = sha256First8("dz::ix::write_off_solana_validator_debt")
	InstructionReclassifyBadSolanaValidatorDebt     = sha256First8("dz::ix::reclassify_bad_solana_validator_debt")
	InstructionRecoverBadSolanaValidatorDebt        = sha256First8("dz::ix::recover_bad_solana_validator_debt")
	InstructionForgiveSolanaValidatorDebt           = sha256First8("dz::ix::forgive_solana_validator_debt")
	InstructionSweepDistributionTokens              = sha256First8("dz::ix::sweep_distribution_tokens")
	InstructionDistributeRewards                    = sha256First8("dz::ix::distribute_rewards")
	InstructionInitializeContributorRewards         = sha256First8("dz::ix::initialize_contributor_rewards")
	InstructionSetRewardsManager                    = sha256First8("dz::ix::set_rewards_manager")
	InstructionConfigureContributorRewards          = sha256First8("dz::ix::configure_contributor_rewards")
	InstructionInitializeSolanaValidatorDeposit     = sha256First8("dz::ix::initialize_solana_validator_deposit")
)

// buildData borsh-encodes disc followed by payload's fields in declaration order.
func buildData(disc [8]byte, payload any) ([]byte, error) {
	body, err := borsh.Serialize(payload)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, len(disc)+len(body))
	data = append(data, disc[:]...)
	data = append(data, body...)
	return data, nil
}

func newInstruction(programID solana.PublicKey, accounts solana.AccountMetaSlice, data []byte) solana.Instruction {
	return solana.NewInstruction(programID, accounts, data)
}

// MerkleProofData is the Borsh wire shape of a MerkleProof passed in instruction data.
type MerkleProofData struct {
	Siblings  [][32]byte
	LeafIndex uint32
}

// NewInitializeProgram builds the InitializeProgram instruction. admin is signer/payer.
func NewInitializeProgram(programID, admin, configPDA, systemProgram solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionInitializeProgram, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, true, true),
		solana.NewAccountMeta(configPDA, true, false),
		solana.NewAccountMeta(systemProgram, false, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewSetAdmin builds SetAdmin, signed by the program's upgrade authority.
func NewSetAdmin(programID, upgradeAuthority, configPDA, newAdmin solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionSetAdmin, struct {
		NewAdmin solana.PublicKey
	}{NewAdmin: newAdmin})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(upgradeAuthority, false, true),
		solana.NewAccountMeta(configPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// ConfigureProgramSetting is a tagged union of the settings ConfigureProgram can change.
// Exactly one field besides Tag should be meaningful for a given Tag value.
type ConfigureProgramSetting struct {
	Tag                   uint8
	Pause                 bool
	Unpause               bool
	AdminKey              solana.PublicKey
	DebtAccountantKey     solana.PublicKey
	RewardsAccountantKey  solana.PublicKey
	ContributorManagerKey solana.PublicKey
	DZLedgerSentinelKey   solana.PublicKey
	SOL2ZSwapProgramID    solana.PublicKey
	FeeParameters         SolanaValidatorFeeParameters
	RelayParameters       RelayParameters
	CalculationGraceMin   uint16
	InitGraceMin          uint16
	MinEpochFinalize      uint8
	MinEpochRecover       uint8
	BurnRateInitial       *uint32
	BurnRateLimit         uint32
	BurnRateToIncreasing  uint32
	BurnRateToLimit       uint32
	DebtWriteOffActivationEpoch uint64
}

const (
	ConfigureProgramTagPauseUnpause uint8 = iota
	ConfigureProgramTagAdminKey
	ConfigureProgramTagDebtAccountantKey
	ConfigureProgramTagRewardsAccountantKey
	ConfigureProgramTagContributorManagerKey
	ConfigureProgramTagDZLedgerSentinelKey
	ConfigureProgramTagSOL2ZSwapProgramID
	ConfigureProgramTagFeeParameters
	ConfigureProgramTagRelayParameters
	ConfigureProgramTagGracePeriods
	ConfigureProgramTagMinimumEpochDurations
	ConfigureProgramTagCommunityBurnRate
	ConfigureProgramTagDebtWriteOffActivationEpoch
)

// NewConfigureProgram builds ConfigureProgram, signed by the current admin.
func NewConfigureProgram(programID, admin, configPDA solana.PublicKey, setting ConfigureProgramSetting) (solana.Instruction, error) {
	data, err := buildData(InstructionConfigureProgram, setting)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(configPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewSetRewardsManager builds SetRewardsManager, signed by the contributor manager.
func NewSetRewardsManager(programID, contributorManager, contributorRewardsPDA, newManager solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionSetRewardsManager, struct {
		NewRewardsManager solana.PublicKey
	}{newManager})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(contributorManager, false, true),
		solana.NewAccountMeta(contributorRewardsPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewInitializePrepaidConnection builds InitializePrepaidConnection.
func NewInitializePrepaidConnection(programID, payer, connectionPDA, user, systemProgram solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionInitializePrepaidConnection, struct {
		User solana.PublicKey
	}{user})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(connectionPDA, true, false),
		solana.NewAccountMeta(systemProgram, false, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewGrantPrepaidConnectionAccess and NewDenyPrepaidConnectionAccess build the sentinel-signed
// access-grant toggles.
func NewGrantPrepaidConnectionAccess(programID, sentinel, configPDA, connectionPDA solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionGrantPrepaidConnectionAccess, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(sentinel, false, true),
		solana.NewAccountMeta(configPDA, false, false),
		solana.NewAccountMeta(connectionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

func NewDenyPrepaidConnectionAccess(programID, sentinel, configPDA, connectionPDA solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionDenyPrepaidConnectionAccess, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(sentinel, false, true),
		solana.NewAccountMeta(configPDA, false, false),
		solana.NewAccountMeta(connectionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewConfigureDistributionRewards builds ConfigureDistributionRewards.
func NewConfigureDistributionRewards(programID, rewardsAccountant, distributionPDA solana.PublicKey, totalContributors uint32, root [32]byte) (solana.Instruction, error) {
	data, err := buildData(InstructionConfigureDistributionRewards, struct {
		TotalContributors uint32
		MerkleRoot        [32]byte
	}{totalContributors, root})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(rewardsAccountant, false, true),
		solana.NewAccountMeta(distributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewFinalizeDistributionRewards builds FinalizeDistributionRewards.
func NewFinalizeDistributionRewards(programID, rewardsAccountant, configPDA, distributionPDA solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionFinalizeDistributionRewards, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(rewardsAccountant, false, true),
		solana.NewAccountMeta(configPDA, false, false),
		solana.NewAccountMeta(distributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewEnableSolanaValidatorDebtWriteOff and NewEnableErroneousSolanaValidatorDebt build the two
// debt-accountant-signed bitmap-allocation toggles.
func NewEnableSolanaValidatorDebtWriteOff(programID, debtAccountant, configPDA, distributionPDA solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionEnableSolanaValidatorDebtWriteOff, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(configPDA, false, false),
		solana.NewAccountMeta(distributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

func NewEnableErroneousSolanaValidatorDebt(programID, debtAccountant, configPDA, distributionPDA solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionEnableErroneousSolanaValidatorDebt, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(configPDA, false, false),
		solana.NewAccountMeta(distributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewReclassifyBadSolanaValidatorDebt, NewRecoverBadSolanaValidatorDebt, and
// NewForgiveSolanaValidatorDebt build the remaining debt-settlement instructions.
func NewReclassifyBadSolanaValidatorDebt(programID, debtAccountant, distributionPDA, depositPDA solana.PublicKey, leafIndex uint32, amount uint64) (solana.Instruction, error) {
	data, err := buildData(InstructionReclassifyBadSolanaValidatorDebt, struct {
		LeafIndex uint32
		Amount    uint64
	}{leafIndex, amount})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(distributionPDA, true, false),
		solana.NewAccountMeta(depositPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

func NewRecoverBadSolanaValidatorDebt(programID, debtAccountant, currentDistributionPDA, windfallDistributionPDA, depositPDA, journalPDA solana.PublicKey, leafIndex uint32, amount uint64) (solana.Instruction, error) {
	data, err := buildData(InstructionRecoverBadSolanaValidatorDebt, struct {
		LeafIndex uint32
		Amount    uint64
	}{leafIndex, amount})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(currentDistributionPDA, true, false),
		solana.NewAccountMeta(windfallDistributionPDA, true, false),
		solana.NewAccountMeta(depositPDA, true, false),
		solana.NewAccountMeta(journalPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

func NewForgiveSolanaValidatorDebt(programID, debtAccountant, currentDistributionPDA, nextDistributionPDA solana.PublicKey, leafIndex uint32, amount uint64) (solana.Instruction, error) {
	data, err := buildData(InstructionForgiveSolanaValidatorDebt, struct {
		LeafIndex uint32
		Amount    uint64
	}{leafIndex, amount})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(currentDistributionPDA, true, false),
		solana.NewAccountMeta(nextDistributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewInitializeJournal builds InitializeJournal.
func NewInitializeJournal(programID, payer, journalPDA, tokenMint2Z, custodyTokenAccount, systemProgram, tokenProgram solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionInitializeJournal, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(journalPDA, true, false),
		solana.NewAccountMeta(tokenMint2Z, false, false),
		solana.NewAccountMeta(custodyTokenAccount, true, false),
		solana.NewAccountMeta(systemProgram, false, false),
		solana.NewAccountMeta(tokenProgram, false, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewInitializeDistribution builds InitializeDistribution, signed by the debt accountant.
func NewInitializeDistribution(programID, debtAccountant, configPDA, journalPDA, distributionPDA, distributionCustody, systemProgram solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionInitializeDistribution, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(configPDA, true, false),
		solana.NewAccountMeta(journalPDA, true, false),
		solana.NewAccountMeta(distributionPDA, true, false),
		solana.NewAccountMeta(distributionCustody, true, false),
		solana.NewAccountMeta(systemProgram, false, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewConfigureDistributionDebt builds ConfigureDistributionDebt.
func NewConfigureDistributionDebt(programID, debtAccountant, distributionPDA solana.PublicKey, totalValidators uint32, totalDebt uint64, root [32]byte) (solana.Instruction, error) {
	data, err := buildData(InstructionConfigureDistributionDebt, struct {
		TotalSolanaValidators uint32
		TotalSolanaValidatorDebt uint64
		MerkleRoot            [32]byte
	}{totalValidators, totalDebt, root})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(distributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewFinalizeDistributionDebt builds FinalizeDistributionDebt.
func NewFinalizeDistributionDebt(programID, debtAccountant, distributionPDA solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionFinalizeDistributionDebt, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(distributionPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewPaySolanaValidatorDebt builds PaySolanaValidatorDebt, permissionless.
func NewPaySolanaValidatorDebt(programID, payer, distributionPDA, depositPDA, journalPDA solana.PublicKey, nodeID solana.PublicKey, amount uint64, proof MerkleProofData) (solana.Instruction, error) {
	data, err := buildData(InstructionPaySolanaValidatorDebt, struct {
		NodeID solana.PublicKey
		Amount uint64
		Proof  MerkleProofData
	}{nodeID, amount, proof})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
		solana.NewAccountMeta(distributionPDA, true, false),
		solana.NewAccountMeta(depositPDA, true, false),
		solana.NewAccountMeta(journalPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewWriteOffSolanaValidatorDebt builds WriteOffSolanaValidatorDebt.
func NewWriteOffSolanaValidatorDebt(programID, debtAccountant, currentDistributionPDA, writeOffDistributionPDA, depositPDA solana.PublicKey, leafIndex uint32, amount uint64) (solana.Instruction, error) {
	data, err := buildData(InstructionWriteOffSolanaValidatorDebt, struct {
		LeafIndex uint32
		Amount    uint64
	}{leafIndex, amount})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(debtAccountant, false, true),
		solana.NewAccountMeta(currentDistributionPDA, true, false),
		solana.NewAccountMeta(writeOffDistributionPDA, true, false),
		solana.NewAccountMeta(depositPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewSweepDistributionTokens builds SweepDistributionTokens.
func NewSweepDistributionTokens(programID, caller, journalPDA, distributionPDA, swapDestinationPDA, distributionCustody solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionSweepDistributionTokens, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(caller, false, true),
		solana.NewAccountMeta(journalPDA, true, false),
		solana.NewAccountMeta(distributionPDA, true, false),
		solana.NewAccountMeta(swapDestinationPDA, true, false),
		solana.NewAccountMeta(distributionCustody, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// DistributeRewardsRecipient is one entry of the recipient list passed to DistributeRewards,
// which must exactly match the contributor's stored ContributorRewards recipients.
type DistributeRewardsRecipient struct {
	RecipientKey solana.PublicKey
	BasisPoints  uint16
}

// NewDistributeRewards builds DistributeRewards, permissionless/relay-paid.
func NewDistributeRewards(programID, caller, distributionPDA, contributorRewardsPDA, relayAccount solana.PublicKey, unitShare, economicBurnRate uint32, proof MerkleProofData, recipients []DistributeRewardsRecipient) (solana.Instruction, error) {
	data, err := buildData(InstructionDistributeRewards, struct {
		UnitShare        uint32
		EconomicBurnRate uint32
		Proof            MerkleProofData
		Recipients       []DistributeRewardsRecipient
	}{unitShare, economicBurnRate, proof, recipients})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(caller, false, true),
		solana.NewAccountMeta(distributionPDA, true, false),
		solana.NewAccountMeta(contributorRewardsPDA, false, false),
		solana.NewAccountMeta(relayAccount, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewInitializeContributorRewards builds InitializeContributorRewards.
func NewInitializeContributorRewards(programID, contributorManager, payer, contributorRewardsPDA solana.PublicKey, serviceKey solana.PublicKey, systemProgram solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionInitializeContributorRewards, struct {
		ServiceKey solana.PublicKey
	}{serviceKey})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(contributorManager, false, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(contributorRewardsPDA, true, false),
		solana.NewAccountMeta(systemProgram, false, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// ConfigureContributorRewardsSetting is a tagged union for ConfigureContributorRewards.
type ConfigureContributorRewardsSetting struct {
	Tag                         uint8
	Recipients                  []RewardRecipientData
	IsSetRewardsManagerBlocked  bool
}

// RewardRecipientData is the Borsh wire shape of a recipient entry.
type RewardRecipientData struct {
	RecipientKey solana.PublicKey
	BasisPoints  uint16
}

const (
	ConfigureContributorRewardsTagRecipients uint8 = iota
	ConfigureContributorRewardsTagIsSetRewardsManagerBlocked
)

// NewConfigureContributorRewards builds ConfigureContributorRewards, signed by the
// rewards manager for the Recipients tag.
func NewConfigureContributorRewards(programID, signer, contributorRewardsPDA solana.PublicKey, setting ConfigureContributorRewardsSetting) (solana.Instruction, error) {
	data, err := buildData(InstructionConfigureContributorRewards, setting)
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(signer, false, true),
		solana.NewAccountMeta(contributorRewardsPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewInitializeSolanaValidatorDeposit builds InitializeSolanaValidatorDeposit, permissionless.
func NewInitializeSolanaValidatorDeposit(programID, payer, depositPDA solana.PublicKey, nodeID solana.PublicKey, systemProgram solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionInitializeSolanaValidatorDeposit, struct {
		NodeID solana.PublicKey
	}{nodeID})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(depositPDA, true, false),
		solana.NewAccountMeta(systemProgram, false, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewLoadPrepaidConnection builds LoadPrepaidConnection.
func NewLoadPrepaidConnection(programID, payer, journalPDA solana.PublicKey, user solana.PublicKey, validThroughDZEpoch uint64, decimals uint8, costPerEpoch uint64) (solana.Instruction, error) {
	data, err := buildData(InstructionLoadPrepaidConnection, struct {
		User                solana.PublicKey
		ValidThroughDZEpoch uint64
		Decimals            uint8
		CostPerEpoch        uint64
	}{user, validThroughDZEpoch, decimals, costPerEpoch})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
		solana.NewAccountMeta(journalPDA, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}

// NewMigrateProgramAccounts builds the supplemented MigrateProgramAccounts instruction,
// signed by the admin, used to re-lay out an account after a program upgrade adds fields.
func NewMigrateProgramAccounts(programID, admin, configPDA solana.PublicKey, targetAccounts []solana.PublicKey) (solana.Instruction, error) {
	data, err := buildData(InstructionMigrateProgramAccounts, struct{}{})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(configPDA, true, false),
	}
	for _, a := range targetAccounts {
		accounts = append(accounts, solana.NewAccountMeta(a, true, false))
	}
	return newInstruction(programID, accounts, data), nil
}

// NewWithdrawSol builds the supplemented WithdrawSol instruction, signed by the admin, used
// to sweep excess lamports above rent exemption out of a program-owned PDA.
func NewWithdrawSol(programID, admin, sourcePDA, destination solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	data, err := buildData(InstructionWithdrawSol, struct {
		Lamports uint64
	}{lamports})
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(sourcePDA, true, false),
		solana.NewAccountMeta(destination, true, false),
	}
	return newInstruction(programID, accounts, data), nil
}
